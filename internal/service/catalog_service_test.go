package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/experience-booking/internal/model"
	"github.com/iliyamo/experience-booking/internal/repository"
)

func TestGetExperienceAvailability(t *testing.T) {
	store := newTestStore(t)
	svc := NewCatalogService(store)
	ctx := context.Background()

	view, err := svc.GetExperienceAvailability(ctx, "exp-1", testDate)

	require.NoError(t, err)
	assert.Equal(t, "exp-1", view.Experience.ID)
	assert.Equal(t, testDate, view.Date)
	require.Len(t, view.Timeslots, 3)
	assert.Equal(t, "T1", view.Timeslots[0].ID)
	assert.True(t, view.Timeslots[0].Available)
	assert.False(t, view.Timeslots[2].Available)
}

func TestGetExperienceAvailability_DateWithoutTimeslotsIsEmpty(t *testing.T) {
	store := newTestStore(t)
	svc := NewCatalogService(store)

	view, err := svc.GetExperienceAvailability(context.Background(), "exp-2", "2030-01-01")

	require.NoError(t, err)
	assert.Equal(t, "2030-01-01", view.Date)
	assert.NotNil(t, view.Timeslots)
	assert.Empty(t, view.Timeslots)
}

func TestGetExperienceAvailability_Errors(t *testing.T) {
	svc := NewCatalogService(newTestStore(t))
	ctx := context.Background()

	_, err := svc.GetExperienceAvailability(ctx, "missing", testDate)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetExperienceAvailability(ctx, "exp-1", "2026-13-40")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.GetExperienceAvailability(ctx, " ", testDate)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListAvailability_IdempotentRead(t *testing.T) {
	store := newTestStore(t)
	svc := NewCatalogService(store)
	ctx := context.Background()

	first, err := svc.ListAvailability(ctx, "exp-1", testDate)
	require.NoError(t, err)
	second, err := svc.ListAvailability(ctx, "exp-1", testDate)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = newTestService(store).Reserve(ctx, request("T1", "09:00 AM", 2))
	require.NoError(t, err)
	third, err := svc.ListAvailability(ctx, "exp-1", testDate)
	require.NoError(t, err)
	assert.Equal(t, 3, third[0].SpotsLeft)
}

func TestListAvailability_UnknownExperienceIsEmpty(t *testing.T) {
	svc := NewCatalogService(newTestStore(t))

	out, err := svc.ListAvailability(context.Background(), "missing", testDate)

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestListAvailability_TrimsExperienceID(t *testing.T) {
	svc := NewCatalogService(newTestStore(t))
	ctx := context.Background()

	want, err := svc.ListAvailability(ctx, "exp-1", testDate)
	require.NoError(t, err)
	require.NotEmpty(t, want)

	got, err := svc.ListAvailability(ctx, " exp-1\t", testDate)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestListExperiences(t *testing.T) {
	svc := NewCatalogService(newTestStore(t))

	list, err := svc.ListExperiences(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "exp-1", list[0].ID)
}

func TestGetBooking(t *testing.T) {
	store := newTestStore(t)
	svc := NewCatalogService(store)
	ctx := context.Background()
	b, err := newTestService(store).Reserve(ctx, request("T2", "02:00 PM", 4))
	require.NoError(t, err)

	got, err := svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	_, err = svc.GetBooking(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

type brokenStore struct {
	*repository.MemoryStore
}

func (brokenStore) ListExperiences(context.Context) ([]model.Experience, error) {
	return nil, errors.New("connection reset")
}

func TestListExperiences_StoreError(t *testing.T) {
	svc := NewCatalogService(brokenStore{repository.NewMemoryStore()})

	_, err := svc.ListExperiences(context.Background())

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "connection reset")
}
