package logging

import "go.uber.org/zap"

// KVLogger adapts zap to the key/value logging interface the services
// depend on.
type KVLogger struct {
	sugar *zap.SugaredLogger
}

// NewKVLogger creates a new KVLogger
func NewKVLogger(logger *zap.Logger) *KVLogger {
	return &KVLogger{sugar: logger.Sugar()}
}

// Info logs at info level with alternating key/value pairs.
func (l *KVLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Error logs at error level with alternating key/value pairs.
func (l *KVLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}
