package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openproc/requisition-approval/internal/errs"
	"github.com/openproc/requisition-approval/internal/models"
	"github.com/openproc/requisition-approval/pkg/database"
)

// roleColumns whitelists the status column each role may patch. Anything
// outside this map never reaches SQL.
var roleColumns = map[string]string{
	models.RoleHOD:   "hod_status",
	models.RoleStore: "store_status",
	models.RoleGM:    "gm_status",
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// RequisitionRepository is the durable requisition store: create, list,
// find-by-number and the single-field status patch.
type RequisitionRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewRequisitionRepository creates a new requisition repository
func NewRequisitionRepository(db *database.DB, logger *zap.Logger) *RequisitionRepository {
	return &RequisitionRepository{db: db, logger: logger}
}

const requisitionColumns = `
	id, req_no, type, department, department_id, req_date, remark, created_by,
	hod_status, store_status, gm_status, created_at, updated_at`

// Create persists a new requisition with all of its line items. The
// requisition number is assigned here, from a counter incremented in the
// same transaction as the insert, so a failed write never consumes a number.
func (r *RequisitionRepository) Create(ctx context.Context, req *models.Requisition) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		seq, err := nextReqNo(ctx, tx)
		if err != nil {
			return fmt.Errorf("next req no: %w", err)
		}
		req.ReqNo = models.FormatReqNo(seq)

		_, err = tx.ExecContext(ctx, `
			INSERT INTO requisitions (
				id, req_no, type, department, department_id, req_date,
				remark, created_by, hod_status, store_status, gm_status
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			req.ID, req.ReqNo, req.Type, req.Department, req.DepartmentID,
			req.Date, req.Remark, req.CreatedBy,
			req.Status.HOD, req.Status.Store, req.Status.GM,
		)
		if err != nil {
			return fmt.Errorf("insert requisition: %w", err)
		}

		for _, item := range req.Items {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO requisition_items (
					requisition_id, sr_no, item_code, item_description,
					sub_group, extra_description, make, current_stock,
					required_qty, uom
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				req.ID, item.SrNo, item.ItemCode, item.ItemDescription,
				item.SubGroup, item.ExtraDescription, item.Make,
				item.CurrentStock.String(), item.RequiredQty.String(), item.UOM,
			)
			if err != nil {
				return fmt.Errorf("insert item %d: %w", item.SrNo, err)
			}
		}

		// Read back store-assigned timestamps so the returned record matches
		// a subsequent query exactly.
		return tx.QueryRowContext(ctx,
			"SELECT created_at, updated_at FROM requisitions WHERE id = ?", req.ID,
		).Scan(&req.CreatedAt, &req.UpdatedAt)
	})
	if err != nil {
		r.logger.Error("Failed to create requisition", zap.String("id", req.ID), zap.Error(err))
		return errs.NewPersistence("create requisition", err)
	}

	return nil
}

// nextReqNo atomically increments and returns the requisition counter.
func nextReqNo(ctx context.Context, tx *sql.Tx) (int64, error) {
	if _, err := tx.ExecContext(ctx,
		"UPDATE requisition_counter SET value = value + 1 WHERE id = 1"); err != nil {
		return 0, err
	}

	var seq int64
	err := tx.QueryRowContext(ctx,
		"SELECT value FROM requisition_counter WHERE id = 1").Scan(&seq)
	return seq, err
}

// GetByID retrieves a requisition and its items by store-assigned id.
func (r *RequisitionRepository) GetByID(ctx context.Context, id string) (*models.Requisition, error) {
	return r.getOne(ctx, r.db.DB, "id = ?", id)
}

// GetByReqNo retrieves a requisition and its items by requisition number.
func (r *RequisitionRepository) GetByReqNo(ctx context.Context, reqNo string) (*models.Requisition, error) {
	return r.getOne(ctx, r.db.DB, "req_no = ?", reqNo)
}

func (r *RequisitionRepository) getOne(ctx context.Context, q querier, where string, arg interface{}) (*models.Requisition, error) {
	row := q.QueryRowContext(ctx,
		"SELECT"+requisitionColumns+" FROM requisitions WHERE "+where, arg)

	req, err := scanRequisition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get requisition", zap.Error(err))
		return nil, errs.NewPersistence("get requisition", err)
	}

	if err := r.loadItems(ctx, q, req); err != nil {
		return nil, errs.NewPersistence("load items", err)
	}
	return req, nil
}

// List returns all requisitions in assignment order, items included.
// Numbers widen past REQ999, so length sorts before text to keep REQ1000
// after REQ999.
func (r *RequisitionRepository) List(ctx context.Context) ([]*models.Requisition, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT"+requisitionColumns+" FROM requisitions ORDER BY LENGTH(req_no), req_no")
	if err != nil {
		r.logger.Error("Failed to list requisitions", zap.Error(err))
		return nil, errs.NewPersistence("list requisitions", err)
	}
	defer rows.Close()

	var reqs []*models.Requisition
	for rows.Next() {
		req, err := scanRequisition(rows)
		if err != nil {
			return nil, errs.NewPersistence("scan requisition", err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewPersistence("list requisitions", err)
	}

	for _, req := range reqs {
		if err := r.loadItems(ctx, r.db.DB, req); err != nil {
			return nil, errs.NewPersistence("load items", err)
		}
	}
	return reqs, nil
}

// UpdateRoleStatus patches exactly one role's status column and returns the
// full updated record. Update and reload share one transaction, so the
// returned record reflects the write and nothing else is touched.
func (r *RequisitionRepository) UpdateRoleStatus(ctx context.Context, id, role, status string) (*models.Requisition, error) {
	column, ok := roleColumns[role]
	if !ok {
		return nil, errs.NewValidation("role", "unknown role "+role)
	}

	var updated *models.Requisition
	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE requisitions SET "+column+" = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			status, id)
		if err != nil {
			return errs.NewPersistence("update "+column, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return errs.ErrNotFound
		}

		updated, err = r.getOne(ctx, tx, "id = ?", id)
		return err
	})
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		r.logger.Error("Failed to update status",
			zap.String("id", id),
			zap.String("role", role),
			zap.String("status", status),
			zap.Error(err))
		return nil, err
	}

	return updated, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequisition(row rowScanner) (*models.Requisition, error) {
	var req models.Requisition
	err := row.Scan(
		&req.ID, &req.ReqNo, &req.Type, &req.Department, &req.DepartmentID,
		&req.Date, &req.Remark, &req.CreatedBy,
		&req.Status.HOD, &req.Status.Store, &req.Status.GM,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.Status.Normalize()
	return &req, nil
}

func (r *RequisitionRepository) loadItems(ctx context.Context, q querier, req *models.Requisition) error {
	rows, err := q.QueryContext(ctx, `
		SELECT sr_no, item_code, item_description, sub_group,
			extra_description, make, current_stock, required_qty, uom
		FROM requisition_items
		WHERE requisition_id = ?
		ORDER BY sr_no`, req.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	req.Items = nil
	for rows.Next() {
		var item models.LineItem
		var stock, qty string
		err := rows.Scan(
			&item.SrNo, &item.ItemCode, &item.ItemDescription, &item.SubGroup,
			&item.ExtraDescription, &item.Make, &stock, &qty, &item.UOM,
		)
		if err != nil {
			return err
		}
		if item.CurrentStock, err = decimal.NewFromString(stock); err != nil {
			return fmt.Errorf("bad current_stock %q: %w", stock, err)
		}
		if item.RequiredQty, err = decimal.NewFromString(qty); err != nil {
			return fmt.Errorf("bad required_qty %q: %w", qty, err)
		}
		req.Items = append(req.Items, item)
	}
	return rows.Err()
}
