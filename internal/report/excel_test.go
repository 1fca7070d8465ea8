package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openproc/requisition-approval/internal/models"
)

func TestRegisterExporter_BuildWorkbook(t *testing.T) {
	exporter := NewRegisterExporter(zap.NewNop())

	reqs := []*models.Requisition{
		{
			ReqNo:      "REQ001",
			Type:       models.TypeRevenue,
			Department: "Production",
			Date:       "2026-08-31",
			Status: models.ApprovalStatus{
				HOD:   models.StatusApproved,
				Store: models.StatusPending,
				GM:    models.StatusPending,
			},
			Items: []models.LineItem{
				{SrNo: 1, ItemCode: "ITM-001", RequiredQty: decimal.NewFromInt(4)},
				{SrNo: 2, ItemCode: "ITM-002", RequiredQty: decimal.RequireFromString("2.5")},
			},
		},
		{
			ReqNo:      "REQ002",
			Type:       models.TypeCapital,
			Department: "Maintenance",
			Date:       "2026-08-31",
			Status:     models.NewApprovalStatus(),
		},
	}

	f, err := exporter.BuildWorkbook(reqs)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Register", "Line Items"}, f.GetSheetList())

	reqNo, err := f.GetCellValue("Register", "A2")
	require.NoError(t, err)
	assert.Equal(t, "REQ001", reqNo)

	hod, err := f.GetCellValue("Register", "G2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, hod)

	totalQty, err := f.GetCellValue("Register", "K2")
	require.NoError(t, err)
	assert.Equal(t, "6.5", totalQty)

	secondRow, err := f.GetCellValue("Register", "A3")
	require.NoError(t, err)
	assert.Equal(t, "REQ002", secondRow)

	itemCode, err := f.GetCellValue("Line Items", "C3")
	require.NoError(t, err)
	assert.Equal(t, "ITM-002", itemCode)
}

func TestRegisterExporter_EmptyRegister(t *testing.T) {
	exporter := NewRegisterExporter(zap.NewNop())

	f, err := exporter.BuildWorkbook(nil)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Register", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Req No", header)
}
