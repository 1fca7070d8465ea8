package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openproc/requisition-approval/internal/errs"
	"github.com/openproc/requisition-approval/internal/models"
	"github.com/openproc/requisition-approval/pkg/database"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrator := database.NewMigrator(db, zap.NewNop())
	require.NoError(t, migrator.Run())

	refRepo := NewReferenceRepository(db, zap.NewNop())
	require.NoError(t, refRepo.InsertDepartment(context.Background(), models.Department{
		ID:   "D001",
		Name: "Production",
	}))

	return db
}

func newTestRequisition() *models.Requisition {
	return &models.Requisition{
		Type:         models.TypeRevenue,
		Department:   "Production",
		DepartmentID: "D001",
		Date:         "2026-08-31",
		Remark:       "monthly restock",
		CreatedBy:    "submitter",
		Status:       models.NewApprovalStatus(),
		Items: []models.LineItem{
			{
				SrNo:            1,
				ItemCode:        "ITM-001",
				ItemDescription: "Bearing 6204",
				SubGroup:        "Mechanical",
				Make:            "SKF",
				CurrentStock:    decimal.NewFromInt(12),
				RequiredQty:     decimal.NewFromInt(40),
				UOM:             "pcs",
			},
			{
				SrNo:            2,
				ItemCode:        "ITM-002",
				ItemDescription: "Hydraulic oil",
				SubGroup:        "Consumables",
				CurrentStock:    decimal.RequireFromString("3.5"),
				RequiredQty:     decimal.RequireFromString("20.5"),
				UOM:             "ltr",
			},
		},
	}
}

func TestRequisitionRepository_Create_AssignsSequentialReqNos(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequisitionRepository(db, zap.NewNop())
	ctx := context.Background()

	first := newTestRequisition()
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, "REQ001", first.ReqNo)
	assert.NotEmpty(t, first.ID)

	second := newTestRequisition()
	require.NoError(t, repo.Create(ctx, second))
	assert.Equal(t, "REQ002", second.ReqNo)
	assert.NotEqual(t, first.ID, second.ID)

	third := newTestRequisition()
	require.NoError(t, repo.Create(ctx, third))
	assert.Equal(t, "REQ003", third.ReqNo)
}

func TestRequisitionRepository_GetByReqNo_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequisitionRepository(db, zap.NewNop())
	ctx := context.Background()

	req := newTestRequisition()
	require.NoError(t, repo.Create(ctx, req))

	got, err := repo.GetByReqNo(ctx, req.ReqNo)
	require.NoError(t, err)

	assert.Equal(t, req.ID, got.ID)
	assert.Equal(t, req.ReqNo, got.ReqNo)
	assert.Equal(t, models.TypeRevenue, got.Type)
	assert.Equal(t, "D001", got.DepartmentID)
	assert.Equal(t, "monthly restock", got.Remark)
	assert.Equal(t, models.NewApprovalStatus(), got.Status)

	require.Len(t, got.Items, 2)
	assert.Equal(t, "ITM-001", got.Items[0].ItemCode)
	assert.True(t, got.Items[0].RequiredQty.Equal(decimal.NewFromInt(40)))
	assert.True(t, got.Items[1].RequiredQty.Equal(decimal.RequireFromString("20.5")))
	assert.Equal(t, "ltr", got.Items[1].UOM)
}

func TestRequisitionRepository_GetByReqNo_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequisitionRepository(db, zap.NewNop())

	_, err := repo.GetByReqNo(context.Background(), "REQ999")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRequisitionRepository_UpdateRoleStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequisitionRepository(db, zap.NewNop())
	ctx := context.Background()

	req := newTestRequisition()
	require.NoError(t, repo.Create(ctx, req))

	t.Run("updates only the named role column", func(t *testing.T) {
		updated, err := repo.UpdateRoleStatus(ctx, req.ID, models.RoleStore, models.StatusApproved)
		require.NoError(t, err)

		assert.Equal(t, models.StatusApproved, updated.Status.Store)
		assert.Equal(t, models.StatusPending, updated.Status.HOD)
		assert.Equal(t, models.StatusPending, updated.Status.GM)
	})

	t.Run("roles are independent", func(t *testing.T) {
		updated, err := repo.UpdateRoleStatus(ctx, req.ID, models.RoleGM, models.StatusRejected)
		require.NoError(t, err)

		assert.Equal(t, models.StatusApproved, updated.Status.Store)
		assert.Equal(t, models.StatusRejected, updated.Status.GM)
		assert.Equal(t, models.StatusPending, updated.Status.HOD)
	})

	t.Run("repeating a verdict is idempotent", func(t *testing.T) {
		updated, err := repo.UpdateRoleStatus(ctx, req.ID, models.RoleGM, models.StatusRejected)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, updated.Status.GM)
	})

	t.Run("unknown requisition id", func(t *testing.T) {
		_, err := repo.UpdateRoleStatus(ctx, "no-such-id", models.RoleHOD, models.StatusApproved)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := repo.UpdateRoleStatus(ctx, req.ID, "finance", models.StatusApproved)
		assert.True(t, errs.IsValidation(err))
	})
}

func TestRequisitionRepository_List_OrderedByReqNo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequisitionRepository(db, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newTestRequisition()))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "REQ001", list[0].ReqNo)
	assert.Equal(t, "REQ002", list[1].ReqNo)
	assert.Equal(t, "REQ003", list[2].ReqNo)
	assert.Len(t, list[0].Items, 2)
}

func TestRequisitionRepository_List_OrderPastThreeDigits(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequisitionRepository(db, zap.NewNop())
	ctx := context.Background()

	_, err := db.ExecContext(ctx, "UPDATE requisition_counter SET value = 998 WHERE id = 1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newTestRequisition()))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "REQ999", list[0].ReqNo)
	assert.Equal(t, "REQ1000", list[1].ReqNo)
	assert.Equal(t, "REQ1001", list[2].ReqNo)
}
