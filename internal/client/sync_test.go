package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openproc/requisition-approval/internal/errs"
	"github.com/openproc/requisition-approval/internal/models"
)

// fakeFinder serves a mutable requisition under one requisition number.
type fakeFinder struct {
	mu    sync.Mutex
	reqNo string
	req   *models.Requisition
	err   error
	calls int
}

func (f *fakeFinder) set(req *models.Requisition, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.req, f.err = req, err
}

func (f *fakeFinder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFinder) FindByReqNo(ctx context.Context, reqNo string) (*models.Requisition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.req == nil || reqNo != f.reqNo {
		return nil, errs.ErrNotFound
	}
	return f.req, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("condition not reached within 2s")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSubmitterSync_ObservesStatusChange(t *testing.T) {
	finder := &fakeFinder{reqNo: "REQ001"}
	finder.set(&models.Requisition{
		ReqNo:  "REQ001",
		Status: models.NewApprovalStatus(),
	}, nil)

	var mu sync.Mutex
	var changes []models.ApprovalStatus
	s := NewSubmitterSync(finder, zap.NewNop(),
		WithPollInterval(10*time.Millisecond),
		WithOnChange(func(reqNo string, status models.ApprovalStatus) {
			mu.Lock()
			changes = append(changes, status)
			mu.Unlock()
		}))

	s.Track("REQ001")
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	// Server-side verdict lands.
	finder.set(&models.Requisition{
		ReqNo:  "REQ001",
		Status: models.ApprovalStatus{HOD: models.StatusApproved, Store: models.StatusPending, GM: models.StatusPending},
	}, nil)

	waitFor(t, func() bool {
		_, status := s.Status()
		return status.HOD == models.StatusApproved
	})

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, changes)
	assert.Equal(t, models.StatusApproved, changes[len(changes)-1].HOD)
}

func TestSubmitterSync_NotFoundLeavesStatusUntouched(t *testing.T) {
	finder := &fakeFinder{reqNo: "REQ001"}

	s := NewSubmitterSync(finder, zap.NewNop(), WithPollInterval(10*time.Millisecond))
	s.Track("REQ001")
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	waitFor(t, func() bool {
		return finder.callCount() >= 3
	})

	reqNo, status := s.Status()
	assert.Equal(t, "REQ001", reqNo)
	assert.Equal(t, models.NewApprovalStatus(), status)
}

func TestSubmitterSync_TransportErrorLeavesStatusUntouched(t *testing.T) {
	finder := &fakeFinder{reqNo: "REQ001"}
	finder.set(&models.Requisition{
		ReqNo:  "REQ001",
		Status: models.ApprovalStatus{HOD: models.StatusApproved, Store: models.StatusPending, GM: models.StatusPending},
	}, nil)

	s := NewSubmitterSync(finder, zap.NewNop(), WithPollInterval(10*time.Millisecond))
	s.Track("REQ001")
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	waitFor(t, func() bool {
		_, status := s.Status()
		return status.HOD == models.StatusApproved
	})

	// Connectivity drops: the last observed status must survive.
	finder.set(nil, errs.NewNetwork("find", context.DeadlineExceeded))

	before := finder.callCount()
	waitFor(t, func() bool {
		return finder.callCount() >= before+3
	})

	_, status := s.Status()
	assert.Equal(t, models.StatusApproved, status.HOD)
}

func TestSubmitterSync_TrackResetsToPending(t *testing.T) {
	finder := &fakeFinder{reqNo: "REQ001"}
	finder.set(&models.Requisition{
		ReqNo:  "REQ001",
		Status: models.ApprovalStatus{HOD: models.StatusRejected, Store: models.StatusRejected, GM: models.StatusRejected},
	}, nil)

	s := NewSubmitterSync(finder, zap.NewNop(), WithPollInterval(10*time.Millisecond))
	s.Track("REQ001")
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	waitFor(t, func() bool {
		_, status := s.Status()
		return status.HOD == models.StatusRejected
	})

	s.Track("REQ002")
	reqNo, status := s.Status()
	assert.Equal(t, "REQ002", reqNo)
	assert.Equal(t, models.NewApprovalStatus(), status)
}

// blockingFinder parks every call until its context is cancelled.
type blockingFinder struct {
	mu    sync.Mutex
	calls int
}

func (f *blockingFinder) FindByReqNo(ctx context.Context, reqNo string) (*models.Requisition, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *blockingFinder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestSubmitterSync_StopWaitsForInFlightPoll(t *testing.T) {
	finder := &blockingFinder{}

	s := NewSubmitterSync(finder, zap.NewNop(), WithPollInterval(10*time.Millisecond))
	s.Track("REQ001")
	require.NoError(t, s.Start(context.Background()))

	waitFor(t, func() bool { return finder.callCount() >= 1 })

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while a poll was in flight")
	}
}

func TestSubmitterSync_RestartRunsSingleLoop(t *testing.T) {
	finder := &fakeFinder{reqNo: "REQ001"}
	finder.set(&models.Requisition{
		ReqNo:  "REQ001",
		Status: models.NewApprovalStatus(),
	}, nil)

	s := NewSubmitterSync(finder, zap.NewNop(), WithPollInterval(10*time.Millisecond))
	s.Track("REQ001")
	require.NoError(t, s.Start(context.Background()))

	waitFor(t, func() bool { return finder.callCount() >= 2 })
	s.Stop()

	// Stop waited the loop out, so nothing polls between stop and restart.
	afterStop := finder.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, afterStop, finder.callCount())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	// One loop at 10ms produces at most ~21 polls in 200ms plus the
	// immediate first one; a leaked second loop would roughly double that.
	before := finder.callCount()
	time.Sleep(200 * time.Millisecond)
	polls := finder.callCount() - before
	assert.GreaterOrEqual(t, polls, 5)
	assert.LessOrEqual(t, polls, 30)
}

func TestSubmitterSync_StartTwiceFails(t *testing.T) {
	s := NewSubmitterSync(&fakeFinder{}, zap.NewNop(), WithPollInterval(time.Hour))

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Error(t, s.Start(context.Background()))
}
