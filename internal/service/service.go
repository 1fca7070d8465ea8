// Package service implements the submission, query and status-update
// operations over the requisition store.
package service

import (
	"context"

	"github.com/openproc/requisition-approval/internal/models"
)

// Logger is the minimal logging dependency used by services.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// RequisitionStore is the store contract the services require: atomic
// create-with-counter and atomic single-field status patch.
type RequisitionStore interface {
	Create(ctx context.Context, req *models.Requisition) error
	GetByID(ctx context.Context, id string) (*models.Requisition, error)
	GetByReqNo(ctx context.Context, reqNo string) (*models.Requisition, error)
	List(ctx context.Context) ([]*models.Requisition, error)
	UpdateRoleStatus(ctx context.Context, id, role, status string) (*models.Requisition, error)
}

// DepartmentLookup resolves department references at submission time.
type DepartmentLookup interface {
	GetDepartment(ctx context.Context, id string) (*models.Department, error)
}
