package service

import (
	"context"

	"github.com/openproc/requisition-approval/internal/errs"
	"github.com/openproc/requisition-approval/internal/models"
)

// StatusService is the approval state machine: three independent
// three-state fields per requisition, every transition legal in both
// directions, no ordering between roles.
type StatusService struct {
	store  RequisitionStore
	logger Logger
}

// NewStatusService creates a new StatusService
func NewStatusService(store RequisitionStore, logger Logger) *StatusService {
	return &StatusService{store: store, logger: logger}
}

// UpdateStatus applies one role's verdict to one requisition and returns the
// full updated record so callers can resynchronize without a second read.
// Enum validation happens before storage is touched; an unknown id yields
// ErrNotFound.
func (s *StatusService) UpdateStatus(ctx context.Context, id, role, status string) (*models.Requisition, error) {
	if !models.IsValidRole(role) {
		return nil, errs.NewValidation("role", "must be one of hod, store, gm")
	}
	if !models.IsValidStatus(status) {
		return nil, errs.NewValidation("status", "must be one of Pending, Approved, Rejected")
	}

	updated, err := s.store.UpdateRoleStatus(ctx, id, role, status)
	if err != nil {
		s.logger.Error("Failed to update status", "error", err,
			"id", id, "role", role, "status", status)
		return nil, err
	}

	s.logger.Info("Status updated",
		"id", id, "req_no", updated.ReqNo, "role", role, "status", status)
	return updated, nil
}
