// Package database seeds reference data so a fresh install has departments
// and catalog items to select from.
package database

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openproc/requisition-approval/internal/models"
	"github.com/openproc/requisition-approval/internal/repository"
)

var seedDepartments = []models.Department{
	{ID: "D001", Name: "Production"},
	{ID: "D002", Name: "Maintenance"},
	{ID: "D003", Name: "Quality Control"},
	{ID: "D004", Name: "Administration"},
}

var seedItems = []models.CatalogItem{
	{ItemCode: "PRD-001", Description: "Hydraulic Oil 68", SubGroup: "Lubricants", Make: "Castrol", CurrentStock: decimal.NewFromInt(40), UOM: "L", DepartmentID: "D001"},
	{ItemCode: "PRD-002", Description: "Conveyor Belt 1200mm", SubGroup: "Spares", Make: "Fenner", CurrentStock: decimal.NewFromInt(3), UOM: "PCS", DepartmentID: "D001"},
	{ItemCode: "MNT-001", Description: "Bearing 6205-2RS", SubGroup: "Bearings", Make: "SKF", CurrentStock: decimal.NewFromInt(12), UOM: "PCS", DepartmentID: "D002"},
	{ItemCode: "MNT-002", Description: "Welding Electrode E6013", SubGroup: "Consumables", Make: "ESAB", CurrentStock: decimal.NewFromInt(200), UOM: "PCS", DepartmentID: "D002"},
	{ItemCode: "QC-001", Description: "pH Buffer Solution 7.0", SubGroup: "Reagents", Make: "Merck", CurrentStock: decimal.NewFromInt(6), UOM: "BTL", DepartmentID: "D003"},
	{ItemCode: "ADM-001", Description: "A4 Copier Paper", SubGroup: "Stationery", Make: "JK", CurrentStock: decimal.NewFromInt(25), UOM: "RM", DepartmentID: "D004"},
}

// SeedReferenceData inserts the default departments and catalog items if the
// department table is empty. Existing data is never modified.
func SeedReferenceData(ctx context.Context, refRepo *repository.ReferenceRepository, logger *zap.Logger) error {
	existing, err := refRepo.ListDepartments(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Debug("Reference data already present, seeding skipped")
		return nil
	}

	logger.Info("Seeding reference data",
		zap.Int("departments", len(seedDepartments)),
		zap.Int("catalog_items", len(seedItems)))

	for _, d := range seedDepartments {
		if err := refRepo.InsertDepartment(ctx, d); err != nil {
			return err
		}
	}
	for _, item := range seedItems {
		if err := refRepo.InsertCatalogItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
