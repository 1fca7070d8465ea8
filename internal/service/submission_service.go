package service

import (
	"context"
	"errors"

	"github.com/openproc/requisition-approval/internal/errs"
	"github.com/openproc/requisition-approval/internal/models"
)

// SubmissionHeader carries the requester-supplied header fields of a new
// requisition. The requisition number and status are assigned server-side.
type SubmissionHeader struct {
	Type         string
	Department   string
	DepartmentID string
	Date         string
	Remark       string
	CreatedBy    string
}

// SubmissionService creates requisitions: validates the header and items,
// assigns the next sequential requisition number and persists everything as
// one unit with all three statuses Pending.
type SubmissionService struct {
	store       RequisitionStore
	departments DepartmentLookup
	logger      Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(store RequisitionStore, departments DepartmentLookup, logger Logger) *SubmissionService {
	return &SubmissionService{store: store, departments: departments, logger: logger}
}

// Submit validates and persists a new requisition, returning the persisted
// record including its generated id and requisition number.
func (s *SubmissionService) Submit(ctx context.Context, header SubmissionHeader, items []models.LineItem) (*models.Requisition, error) {
	if err := s.validate(ctx, header, items); err != nil {
		return nil, err
	}

	// Renumber items so display positions are contiguous from 1 regardless
	// of what the client sent.
	for i := range items {
		items[i].SrNo = i + 1
	}

	req := &models.Requisition{
		Type:         header.Type,
		Department:   header.Department,
		DepartmentID: header.DepartmentID,
		Date:         header.Date,
		Remark:       header.Remark,
		CreatedBy:    header.CreatedBy,
		Items:        items,
		Status:       models.NewApprovalStatus(),
	}

	if err := s.store.Create(ctx, req); err != nil {
		s.logger.Error("Failed to persist requisition", "error", err,
			"department_id", header.DepartmentID)
		return nil, err
	}

	s.logger.Info("Requisition submitted",
		"id", req.ID, "req_no", req.ReqNo,
		"department", req.Department, "items", len(req.Items))
	return req, nil
}

// validate fails fast before any storage is touched.
func (s *SubmissionService) validate(ctx context.Context, header SubmissionHeader, items []models.LineItem) error {
	if header.DepartmentID == "" {
		return errs.NewValidation("departmentId", "must not be empty")
	}
	if len(items) == 0 {
		return errs.NewValidation("items", "at least one line item is required")
	}
	if header.Date == "" {
		return errs.NewValidation("date", "must not be empty")
	}
	if !models.IsValidType(header.Type) {
		return errs.NewValidation("type", "must be Revenue or Capital")
	}

	if _, err := s.departments.GetDepartment(ctx, header.DepartmentID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.NewValidation("departmentId", "unknown department "+header.DepartmentID)
		}
		return err
	}

	for _, item := range items {
		if item.RequiredQty.IsNegative() {
			return errs.NewValidation("items", "requiredQty must not be negative")
		}
		if item.CurrentStock.IsNegative() {
			return errs.NewValidation("items", "currentStock must not be negative")
		}
	}
	return nil
}
