package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openproc/requisition-approval/internal/errs"
	"github.com/openproc/requisition-approval/internal/models"
)

// StatusFinder is the one query the poller needs.
type StatusFinder interface {
	FindByReqNo(ctx context.Context, reqNo string) (*models.Requisition, error)
}

// SubmitterSync keeps a submitter's view of one requisition's approval
// status current by polling find-by-number on a fixed interval. Every poll
// result overwrites the local status wholesale; NotFound and transport
// failures leave it untouched and wait for the next tick. No backoff, no
// retry.
type SubmitterSync struct {
	finder       StatusFinder
	logger       *zap.Logger
	pollInterval time.Duration

	mu        sync.RWMutex
	isRunning bool
	cancel    context.CancelFunc
	done      chan struct{}
	reqNo     string
	status    models.ApprovalStatus
	onChange  func(reqNo string, status models.ApprovalStatus)
}

// SyncOption configures a SubmitterSync.
type SyncOption func(*SubmitterSync)

// WithPollInterval overrides the default 5 second poll interval.
func WithPollInterval(d time.Duration) SyncOption {
	return func(s *SubmitterSync) { s.pollInterval = d }
}

// WithOnChange registers a callback invoked whenever a poll observes a
// status different from the local one.
func WithOnChange(fn func(reqNo string, status models.ApprovalStatus)) SyncOption {
	return func(s *SubmitterSync) { s.onChange = fn }
}

// NewSubmitterSync creates a new poller. It does not start polling until
// Start is called, and does not observe anything until Track is called.
func NewSubmitterSync(finder StatusFinder, logger *zap.Logger, opts ...SyncOption) *SubmitterSync {
	s := &SubmitterSync{
		finder:       finder,
		logger:       logger,
		pollInterval: 5 * time.Second,
		status:       models.NewApprovalStatus(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the polling loop. There is at most one loop per
// SubmitterSync; a second Start without Stop is an error.
func (s *SubmitterSync) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return errors.New("submitter sync is already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.isRunning = true

	s.logger.Info("SubmitterSync started",
		zap.Duration("poll_interval", s.pollInterval))

	go s.pollLoop(loopCtx, s.done)
	return nil
}

// Stop cancels the polling loop and waits for it to exit, so a subsequent
// Start never races an old loop. Safe to call more than once.
func (s *SubmitterSync) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.logger.Info("SubmitterSync stopped")
}

// Name returns the worker name for identification
func (s *SubmitterSync) Name() string {
	return "SubmitterSync"
}

// Track switches the poller to a newly issued requisition number and resets
// the displayed status to all-Pending. The running loop picks the new
// number up on its next tick; no second timer is ever created.
func (s *SubmitterSync) Track(reqNo string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reqNo = reqNo
	s.status = models.NewApprovalStatus()

	s.logger.Info("Tracking requisition", zap.String("req_no", reqNo))
}

// Status returns the tracked requisition number and the last observed
// status.
func (s *SubmitterSync) Status() (string, models.ApprovalStatus) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reqNo, s.status
}

func (s *SubmitterSync) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	// Poll immediately so a freshly tracked number is not blind for a full
	// interval.
	s.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Poll loop context cancelled")
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *SubmitterSync) poll(ctx context.Context) {
	s.mu.RLock()
	reqNo := s.reqNo
	s.mu.RUnlock()

	if reqNo == "" {
		return
	}

	pollCtx, cancel := context.WithTimeout(ctx, s.pollInterval)
	defer cancel()

	req, err := s.finder.FindByReqNo(pollCtx, reqNo)
	if err != nil {
		// Unknown number means the record is not visible yet; transport
		// failures wait for the next tick. Neither disturbs the local view.
		if errors.Is(err, errs.ErrNotFound) {
			s.logger.Debug("Requisition not found while polling", zap.String("req_no", reqNo))
		} else {
			s.logger.Warn("Poll failed", zap.String("req_no", reqNo), zap.Error(err))
		}
		return
	}

	s.mu.Lock()
	if s.reqNo != reqNo {
		// Track was called mid-poll; discard this result.
		s.mu.Unlock()
		return
	}
	changed := s.status != req.Status
	s.status = req.Status
	onChange := s.onChange
	s.mu.Unlock()

	if changed {
		s.logger.Info("Approval status changed",
			zap.String("req_no", reqNo),
			zap.String("hod", req.Status.HOD),
			zap.String("store", req.Status.Store),
			zap.String("gm", req.Status.GM))
		if onChange != nil {
			onChange(reqNo, req.Status)
		}
	}
}
