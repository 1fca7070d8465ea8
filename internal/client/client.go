// Package client implements the two client surfaces: the submitter's
// polling view and the reviewer's approval panel, both over the HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/openproc/requisition-approval/internal/errs"
	"github.com/openproc/requisition-approval/internal/httpapi"
	"github.com/openproc/requisition-approval/internal/models"
)

// Client is the HTTP API client shared by both surfaces.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new API client
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// envelope mirrors the server's response envelope with the data left raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errs.NewNetwork(method+" "+path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.NewNetwork(method+" "+path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return errs.NewNetwork(method+" "+path, fmt.Errorf("bad response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errs.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return errs.NewValidation("request", env.Error)
	case resp.StatusCode >= 400:
		return fmt.Errorf("server rejected %s %s: %s (status %d)", method, path, env.Error, resp.StatusCode)
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errs.NewNetwork(method+" "+path, fmt.Errorf("bad response payload: %w", err))
		}
	}
	return nil
}

// IssueToken requests a reviewer token for the given role.
func (c *Client) IssueToken(ctx context.Context, role string) (string, error) {
	var data struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/token", "",
		httpapi.TokenRequest{Role: role}, &data)
	if err != nil {
		return "", err
	}
	return data.Token, nil
}

// Submit posts a new requisition and returns the persisted record.
func (c *Client) Submit(ctx context.Context, req httpapi.SubmitRequest) (*models.Requisition, error) {
	var created models.Requisition
	if err := c.do(ctx, http.MethodPost, "/api/requisitions", "", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListRequisitions fetches every requisition.
func (c *Client) ListRequisitions(ctx context.Context) ([]*models.Requisition, error) {
	var reqs []*models.Requisition
	if err := c.do(ctx, http.MethodGet, "/api/requisitions", "", nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// FindByReqNo fetches one requisition by number. Unknown numbers yield
// errs.ErrNotFound.
func (c *Client) FindByReqNo(ctx context.Context, reqNo string) (*models.Requisition, error) {
	var req models.Requisition
	if err := c.do(ctx, http.MethodGet, "/api/requisitions/byReqNo/"+reqNo, "", nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateStatus patches one role's verdict and returns the server's updated
// record.
func (c *Client) UpdateStatus(ctx context.Context, token, id, role, status string) (*models.Requisition, error) {
	var data httpapi.UpdateStatusData
	err := c.do(ctx, http.MethodPatch, "/api/requisitions/"+id+"/status", token,
		httpapi.UpdateStatusRequest{Role: role, Status: status}, &data)
	if err != nil {
		return nil, err
	}
	return data.Requisition, nil
}

// ListDepartments fetches the department lookup.
func (c *Client) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	if err := c.do(ctx, http.MethodGet, "/api/admin/departments", "", nil, &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

// ListItems fetches the catalog for one department.
func (c *Client) ListItems(ctx context.Context, departmentID string) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	if err := c.do(ctx, http.MethodGet, "/api/admin/items/"+departmentID, "", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}
