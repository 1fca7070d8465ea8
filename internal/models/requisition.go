package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Verdict values for each approval role. Wire values are these literal
// strings, case-sensitive.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// Approval roles. Each role owns exactly one status field on a requisition.
const (
	RoleHOD   = "hod"
	RoleStore = "store"
	RoleGM    = "gm"
)

// Requisition types.
const (
	TypeRevenue = "Revenue"
	TypeCapital = "Capital"
)

// ApprovalStatus holds the three independent role verdicts. The fields never
// interact: approving as HOD has no effect on Store or GM.
type ApprovalStatus struct {
	HOD   string `json:"hod"`
	Store string `json:"store"`
	GM    string `json:"gm"`
}

// NewApprovalStatus returns the initial all-Pending status.
func NewApprovalStatus() ApprovalStatus {
	return ApprovalStatus{HOD: StatusPending, Store: StatusPending, GM: StatusPending}
}

// Normalize maps empty fields to Pending. Readers never see an absent status.
func (s *ApprovalStatus) Normalize() {
	if s.HOD == "" {
		s.HOD = StatusPending
	}
	if s.Store == "" {
		s.Store = StatusPending
	}
	if s.GM == "" {
		s.GM = StatusPending
	}
}

// Requisition is the root aggregate: a purchase request header, its line
// items and the three-role approval status. Once created it is immutable
// except for the status fields.
type Requisition struct {
	ID           string         `json:"id"`
	ReqNo        string         `json:"reqNo"`
	Type         string         `json:"type"`
	Department   string         `json:"department"`
	DepartmentID string         `json:"departmentId"`
	Date         string         `json:"date"`
	Remark       string         `json:"remark"`
	CreatedBy    string         `json:"createdBy"`
	Items        []LineItem     `json:"items"`
	Status       ApprovalStatus `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// LineItem is one requested catalog item within a requisition. It has no
// identity outside its requisition. CurrentStock is a snapshot taken at
// selection time, not live-linked to the catalog.
type LineItem struct {
	SrNo             int             `json:"srNo"`
	ItemCode         string          `json:"itemCode"`
	ItemDescription  string          `json:"itemDescription"`
	SubGroup         string          `json:"subGroup"`
	ExtraDescription string          `json:"extraDescription"`
	Make             string          `json:"make"`
	CurrentStock     decimal.Decimal `json:"currentStock"`
	RequiredQty      decimal.Decimal `json:"requiredQty"`
	UOM              string          `json:"uom"`
}

// FormatReqNo renders a counter value as a human-facing requisition number:
// REQ + zero-padded 3-digit counter. Values past 999 widen naturally.
func FormatReqNo(seq int64) string {
	return fmt.Sprintf("REQ%03d", seq)
}

// IsValidRole reports whether role names one of the three approval roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleHOD, RoleStore, RoleGM:
		return true
	}
	return false
}

// IsValidStatus reports whether status is a recognized verdict.
func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsValidType reports whether t is a recognized requisition type.
func IsValidType(t string) bool {
	return t == TypeRevenue || t == TypeCapital
}

// RoleStatus returns the verdict held by the given role.
func (r *Requisition) RoleStatus(role string) string {
	switch role {
	case RoleHOD:
		return r.Status.HOD
	case RoleStore:
		return r.Status.Store
	case RoleGM:
		return r.Status.GM
	}
	return ""
}
