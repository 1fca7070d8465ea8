// Package report renders the requisition register as an Excel workbook.
package report

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/openproc/requisition-approval/internal/models"
)

// RegisterExporter builds a two-sheet workbook: the register (one row per
// requisition) and a line-item detail sheet.
type RegisterExporter struct {
	logger *zap.Logger
}

// NewRegisterExporter creates a new RegisterExporter
func NewRegisterExporter(logger *zap.Logger) *RegisterExporter {
	return &RegisterExporter{logger: logger}
}

const (
	registerSheet = "Register"
	itemsSheet    = "Line Items"
)

var registerHeader = []interface{}{
	"Req No", "Type", "Department", "Date", "Created By", "Remark",
	"HOD", "Store", "GM", "Items", "Total Required Qty",
}

var itemsHeader = []interface{}{
	"Req No", "Sr No", "Item Code", "Description", "Sub Group",
	"Make", "Current Stock", "Required Qty", "UOM",
}

// BuildWorkbook renders the requisitions into a fresh workbook.
func (e *RegisterExporter) BuildWorkbook(reqs []*models.Requisition) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", registerSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, fmt.Errorf("failed to create items sheet: %w", err)
	}

	if err := f.SetSheetRow(registerSheet, "A1", &registerHeader); err != nil {
		return nil, fmt.Errorf("failed to write register header: %w", err)
	}
	if err := f.SetSheetRow(itemsSheet, "A1", &itemsHeader); err != nil {
		return nil, fmt.Errorf("failed to write items header: %w", err)
	}

	itemRow := 2
	for i, req := range reqs {
		totalQty := decimal.Zero
		for _, item := range req.Items {
			totalQty = totalQty.Add(item.RequiredQty)
		}

		row := []interface{}{
			req.ReqNo, req.Type, req.Department, req.Date, req.CreatedBy,
			req.Remark, req.Status.HOD, req.Status.Store, req.Status.GM,
			len(req.Items), totalQty.String(),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(registerSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write register row %s: %w", req.ReqNo, err)
		}

		for _, item := range req.Items {
			detail := []interface{}{
				req.ReqNo, item.SrNo, item.ItemCode, item.ItemDescription,
				item.SubGroup, item.Make, item.CurrentStock.String(),
				item.RequiredQty.String(), item.UOM,
			}
			cell := fmt.Sprintf("A%d", itemRow)
			if err := f.SetSheetRow(itemsSheet, cell, &detail); err != nil {
				return nil, fmt.Errorf("failed to write item row %d: %w", itemRow, err)
			}
			itemRow++
		}
	}

	e.logger.Info("Register workbook built",
		zap.Int("requisitions", len(reqs)),
		zap.Int("item_rows", itemRow-2))
	return f, nil
}
