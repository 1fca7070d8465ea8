package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openproc/requisition-approval/internal/errs"
	"github.com/openproc/requisition-approval/internal/models"
)

func TestQueryService_ListAll(t *testing.T) {
	store := &mockStore{
		listFn: func(ctx context.Context) ([]*models.Requisition, error) {
			return []*models.Requisition{
				{ReqNo: "REQ001"},
				{ReqNo: "REQ002"},
			}, nil
		},
	}
	svc := NewQueryService(store, nopLogger{})

	list, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "REQ001", list[0].ReqNo)
}

func TestQueryService_FindByReqNo(t *testing.T) {
	store := &mockStore{
		getByReqNoFn: func(ctx context.Context, reqNo string) (*models.Requisition, error) {
			if reqNo == "REQ001" {
				return &models.Requisition{ID: "id-1", ReqNo: "REQ001"}, nil
			}
			return nil, errs.ErrNotFound
		},
	}
	svc := NewQueryService(store, nopLogger{})

	got, err := svc.FindByReqNo(context.Background(), "REQ001")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)

	_, err = svc.FindByReqNo(context.Background(), "REQ042")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
