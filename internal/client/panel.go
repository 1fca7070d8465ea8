package client

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/openproc/requisition-approval/internal/models"
)

// PanelAPI is the slice of the API the reviewer panel uses.
type PanelAPI interface {
	IssueToken(ctx context.Context, role string) (string, error)
	ListRequisitions(ctx context.Context) ([]*models.Requisition, error)
	UpdateStatus(ctx context.Context, token, id, role, status string) (*models.Requisition, error)
}

// ReviewerPanel holds the full requisition list and an acting role, and
// posts verdicts scoped to that role. After a successful verdict the local
// list is reconciled from the server's returned record, never from a local
// guess, so concurrent verdicts by other roles are not clobbered.
type ReviewerPanel struct {
	api    PanelAPI
	logger *zap.Logger

	mu    sync.RWMutex
	role  string
	token string
	list  []*models.Requisition
}

// NewReviewerPanel creates a panel acting under the given role.
func NewReviewerPanel(api PanelAPI, role string, logger *zap.Logger) *ReviewerPanel {
	return &ReviewerPanel{api: api, role: role, logger: logger}
}

// Role returns the current acting role.
func (p *ReviewerPanel) Role() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.role
}

// SetRole switches the acting role for subsequent verdicts. The loaded list
// is kept as is; switching role does not re-fetch.
func (p *ReviewerPanel) SetRole(role string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if role != p.role {
		p.role = role
		p.token = ""
	}
}

// Load fetches the full requisition list.
func (p *ReviewerPanel) Load(ctx context.Context) error {
	list, err := p.api.ListRequisitions(ctx)
	if err != nil {
		p.logger.Error("Failed to load requisitions", zap.Error(err))
		return err
	}

	p.mu.Lock()
	p.list = list
	p.mu.Unlock()

	p.logger.Info("Requisition list loaded", zap.Int("count", len(list)))
	return nil
}

// Requisitions returns a snapshot of the current list.
func (p *ReviewerPanel) Requisitions() []*models.Requisition {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*models.Requisition, len(p.list))
	copy(out, p.list)
	return out
}

// Decide posts a verdict for one requisition under the acting role and, on
// success, replaces the matching record with the server's echo. On failure
// the local list is left unchanged and the error is returned to the
// operator.
func (p *ReviewerPanel) Decide(ctx context.Context, id, verdict string) (*models.Requisition, error) {
	role, token, err := p.credentials(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := p.api.UpdateStatus(ctx, token, id, role, verdict)
	if err != nil {
		p.logger.Error("Failed to update status",
			zap.String("id", id),
			zap.String("role", role),
			zap.String("verdict", verdict),
			zap.Error(err))
		return nil, err
	}

	p.mu.Lock()
	for i, req := range p.list {
		if req.ID == updated.ID {
			p.list[i] = updated
			break
		}
	}
	p.mu.Unlock()

	p.logger.Info("Verdict recorded",
		zap.String("req_no", updated.ReqNo),
		zap.String("role", role),
		zap.String("verdict", verdict))
	return updated, nil
}

// credentials returns the acting role and a token for it, requesting one
// lazily after each role switch.
func (p *ReviewerPanel) credentials(ctx context.Context) (string, string, error) {
	p.mu.RLock()
	role, token := p.role, p.token
	p.mu.RUnlock()

	if token != "" {
		return role, token, nil
	}

	token, err := p.api.IssueToken(ctx, role)
	if err != nil {
		p.logger.Error("Failed to obtain reviewer token",
			zap.String("role", role), zap.Error(err))
		return "", "", err
	}

	p.mu.Lock()
	// Only cache if the role has not changed underneath us.
	if p.role == role {
		p.token = token
	}
	p.mu.Unlock()

	return role, token, nil
}
