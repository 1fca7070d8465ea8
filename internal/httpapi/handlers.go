package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openproc/requisition-approval/internal/auth"
	"github.com/openproc/requisition-approval/internal/errs"
	"github.com/openproc/requisition-approval/internal/models"
	"github.com/openproc/requisition-approval/internal/report"
	"github.com/openproc/requisition-approval/internal/service"
)

// ReferenceReader serves the lookup endpoints.
type ReferenceReader interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
	ListItemsByDepartment(ctx context.Context, departmentID string) ([]models.CatalogItem, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	submission *service.SubmissionService
	status     *service.StatusService
	query      *service.QueryService
	reference  ReferenceReader
	issuer     *auth.TokenIssuer
	exporter   *report.RegisterExporter
	logger     *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	submission *service.SubmissionService,
	status *service.StatusService,
	query *service.QueryService,
	reference ReferenceReader,
	issuer *auth.TokenIssuer,
	exporter *report.RegisterExporter,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		submission: submission,
		status:     status,
		query:      query,
		reference:  reference,
		issuer:     issuer,
		exporter:   exporter,
		logger:     logger,
	}
}

// Response is the standard JSON envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SubmitRequest is the submission payload. A client-supplied reqNo is
// ignored; the server assigns the next sequential number.
type SubmitRequest struct {
	ReqNo        string            `json:"reqNo"`
	Type         string            `json:"type"`
	Department   string            `json:"department"`
	DepartmentID string            `json:"departmentId" binding:"required"`
	Date         string            `json:"date" binding:"required"`
	Remark       string            `json:"remark"`
	CreatedBy    string            `json:"createdBy"`
	Items        []models.LineItem `json:"items" binding:"required"`
}

// TokenRequest asks for a reviewer token scoped to one role.
type TokenRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateStatusRequest is the single-field patch payload.
type UpdateStatusRequest struct {
	Role   string `json:"role" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// UpdateStatusData wraps the updated record under the key the panel client
// expects.
type UpdateStatusData struct {
	Requisition *models.Requisition `json:"requisition"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":  "healthy",
			"service": "requisition-approval",
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// IssueToken handles POST /api/auth/token
func (h *Handlers) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "role is required"})
		return
	}
	if !models.IsValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "role must be one of hod, store, gm"})
		return
	}

	token, err := h.issuer.Issue(req.Role)
	if err != nil {
		h.logger.Error("Failed to issue token", zap.String("role", req.Role), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"token": token, "role": req.Role}})
}

// ListDepartments handles GET /api/admin/departments
func (h *Handlers) ListDepartments(c *gin.Context) {
	departments, err := h.reference.ListDepartments(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if departments == nil {
		departments = []models.Department{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: departments})
}

// ListItems handles GET /api/admin/items/:departmentId
func (h *Handlers) ListItems(c *gin.Context) {
	items, err := h.reference.ListItemsByDepartment(c.Request.Context(), c.Param("departmentId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if items == nil {
		items = []models.CatalogItem{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: items})
}

// SubmitRequisition handles POST /api/requisitions
func (h *Handlers) SubmitRequisition(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	header := service.SubmissionHeader{
		Type:         req.Type,
		Department:   req.Department,
		DepartmentID: req.DepartmentID,
		Date:         req.Date,
		Remark:       req.Remark,
		CreatedBy:    req.CreatedBy,
	}

	created, err := h.submission.Submit(c.Request.Context(), header, req.Items)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: created})
}

// ListRequisitions handles GET /api/requisitions
func (h *Handlers) ListRequisitions(c *gin.Context) {
	reqs, err := h.query.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if reqs == nil {
		reqs = []*models.Requisition{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: reqs})
}

// FindByReqNo handles GET /api/requisitions/byReqNo/:reqNo
func (h *Handlers) FindByReqNo(c *gin.Context) {
	req, err := h.query.FindByReqNo(c.Request.Context(), c.Param("reqNo"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: req})
}

// UpdateStatus handles PATCH /api/requisitions/:id/status
func (h *Handlers) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	// Capability check: the token's role claim must match the role being
	// patched. The original system let any caller claim any role.
	claimRole := c.GetString(contextKeyRole)
	if claimRole != req.Role {
		c.JSON(http.StatusForbidden, Response{
			Success: false,
			Error:   fmt.Sprintf("token authorizes role %q, not %q", claimRole, req.Role),
		})
		return
	}

	updated, err := h.status.UpdateStatus(c.Request.Context(), c.Param("id"), req.Role, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: UpdateStatusData{Requisition: updated}})
}

// ExportRegister handles GET /api/requisitions/export
func (h *Handlers) ExportRegister(c *gin.Context) {
	reqs, err := h.query.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	workbook, err := h.exporter.BuildWorkbook(reqs)
	if err != nil {
		h.logger.Error("Failed to build register workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to build export"})
		return
	}

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		h.logger.Error("Failed to serialize register workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to build export"})
		return
	}

	filename := fmt.Sprintf("requisition-register-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

// respondError maps the error taxonomy onto status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	switch {
	case errs.IsValidation(err):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "not found"})
	default:
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
