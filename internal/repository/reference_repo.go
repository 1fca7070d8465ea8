package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openproc/requisition-approval/internal/errs"
	"github.com/openproc/requisition-approval/internal/models"
	"github.com/openproc/requisition-approval/pkg/database"
)

// ReferenceRepository serves the read-only lookup data behind the form
// dropdowns: departments and their item catalogs.
type ReferenceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewReferenceRepository creates a new reference data repository
func NewReferenceRepository(db *database.DB, logger *zap.Logger) *ReferenceRepository {
	return &ReferenceRepository{db: db, logger: logger}
}

// ListDepartments returns all departments ordered by name.
func (r *ReferenceRepository) ListDepartments(ctx context.Context) ([]models.Department, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM departments ORDER BY name")
	if err != nil {
		r.logger.Error("Failed to list departments", zap.Error(err))
		return nil, errs.NewPersistence("list departments", err)
	}
	defer rows.Close()

	var departments []models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, errs.NewPersistence("scan department", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// GetDepartment looks up a single department by id.
func (r *ReferenceRepository) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	var d models.Department
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name FROM departments WHERE id = ?", id).Scan(&d.ID, &d.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get department", zap.String("id", id), zap.Error(err))
		return nil, errs.NewPersistence("get department", err)
	}
	return &d, nil
}

// ListItemsByDepartment returns the catalog items selectable for a
// department.
func (r *ReferenceRepository) ListItemsByDepartment(ctx context.Context, departmentID string) ([]models.CatalogItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT item_code, description, sub_group, extra_description,
			make, current_stock, uom, department_id
		FROM catalog_items
		WHERE department_id = ?
		ORDER BY item_code`, departmentID)
	if err != nil {
		r.logger.Error("Failed to list catalog items",
			zap.String("department_id", departmentID), zap.Error(err))
		return nil, errs.NewPersistence("list catalog items", err)
	}
	defer rows.Close()

	var items []models.CatalogItem
	for rows.Next() {
		var item models.CatalogItem
		var stock string
		err := rows.Scan(
			&item.ItemCode, &item.Description, &item.SubGroup,
			&item.ExtraDescription, &item.Make, &stock, &item.UOM,
			&item.DepartmentID,
		)
		if err != nil {
			return nil, errs.NewPersistence("scan catalog item", err)
		}
		if item.CurrentStock, err = decimal.NewFromString(stock); err != nil {
			return nil, errs.NewPersistence("parse current_stock", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// InsertDepartment adds a department. Used by the seeder.
func (r *ReferenceRepository) InsertDepartment(ctx context.Context, d models.Department) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO departments (id, name) VALUES (?, ?)", d.ID, d.Name)
	if err != nil {
		return errs.NewPersistence("insert department", err)
	}
	return nil
}

// InsertCatalogItem adds a catalog item. Used by the seeder.
func (r *ReferenceRepository) InsertCatalogItem(ctx context.Context, item models.CatalogItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO catalog_items (
			item_code, department_id, description, sub_group,
			extra_description, make, current_stock, uom
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ItemCode, item.DepartmentID, item.Description, item.SubGroup,
		item.ExtraDescription, item.Make, item.CurrentStock.String(), item.UOM,
	)
	if err != nil {
		return errs.NewPersistence("insert catalog item", err)
	}
	return nil
}
