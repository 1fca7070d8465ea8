package service

import (
	"context"

	"github.com/openproc/requisition-approval/internal/models"
)

// QueryService exposes the read side used by both client surfaces: the
// reviewer panel's list and the submitter's poll-by-number. Pure reads, safe
// to call concurrently and repeatedly.
type QueryService struct {
	store  RequisitionStore
	logger Logger
}

// NewQueryService creates a new QueryService
func NewQueryService(store RequisitionStore, logger Logger) *QueryService {
	return &QueryService{store: store, logger: logger}
}

// ListAll returns every requisition.
func (s *QueryService) ListAll(ctx context.Context) ([]*models.Requisition, error) {
	reqs, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list requisitions", "error", err)
		return nil, err
	}
	return reqs, nil
}

// FindByReqNo looks a requisition up by its human-facing number. Unknown
// numbers yield ErrNotFound; the polling client treats that as "no change".
func (s *QueryService) FindByReqNo(ctx context.Context, reqNo string) (*models.Requisition, error) {
	return s.store.GetByReqNo(ctx, reqNo)
}
