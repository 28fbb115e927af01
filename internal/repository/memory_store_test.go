package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/experience-booking/internal/model"
)

func seededMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.UpsertExperience(ctx, &model.Experience{ID: "1", Title: "Sunset Beach Yoga"}))
	require.NoError(t, s.UpsertTimeslot(ctx, &model.Timeslot{ID: "T1", ExperienceID: "1", Date: "2026-10-16", Time: "09:00 AM", TotalSpots: 5, SpotsLeft: 5}))
	require.NoError(t, s.UpsertTimeslot(ctx, &model.Timeslot{ID: "T2", ExperienceID: "1", Date: "2026-10-16", Time: "02:00 PM", TotalSpots: 3, SpotsLeft: 3}))
	return s
}

func memBooking(id, timeslotID string, seats int) *model.Booking {
	return &model.Booking{ID: id, ExperienceID: "1", TimeslotID: timeslotID, Date: "2026-10-16", Seats: seats}
}

func TestMemoryStore_CommitAppliesWrites(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		ts, err := tx.GetTimeslotForUpdate(ctx, "T1")
		if err != nil {
			return err
		}
		if err := tx.UpdateTimeslotSpotsLeft(ctx, "T1", ts.SpotsLeft-2); err != nil {
			return err
		}
		return tx.InsertBooking(ctx, memBooking("b1", "T1", 2))
	})
	require.NoError(t, err)

	ts, err := s.GetTimeslot(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, 3, ts.SpotsLeft)
	b, err := s.GetBooking(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 2, b.Seats)
	assert.Len(t, s.BookingsForTimeslot("T1"), 1)
}

func TestMemoryStore_ErrorDiscardsWrites(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.GetTimeslotForUpdate(ctx, "T1"); err != nil {
			return err
		}
		if err := tx.UpdateTimeslotSpotsLeft(ctx, "T1", 0); err != nil {
			return err
		}
		if err := tx.InsertBooking(ctx, memBooking("b1", "T1", 5)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	ts, _ := s.GetTimeslot(ctx, "T1")
	assert.Equal(t, 5, ts.SpotsLeft)
	_, err = s.GetBooking(ctx, "b1")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestMemoryStore_TxReadsItsOwnWrites(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.GetTimeslotForUpdate(ctx, "T1"); err != nil {
			return err
		}
		if err := tx.UpdateTimeslotSpotsLeft(ctx, "T1", 1); err != nil {
			return err
		}
		ts, err := tx.GetTimeslotForUpdate(ctx, "T1")
		if err != nil {
			return err
		}
		assert.Equal(t, 1, ts.SpotsLeft)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStore_WriteGuards(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.UpdateTimeslotSpotsLeft(ctx, "T1", 4)
	})
	assert.ErrorIs(t, err, ErrTimeslotNotLocked)

	err = s.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.GetTimeslotForUpdate(ctx, "T1"); err != nil {
			return err
		}
		return tx.UpdateTimeslotSpotsLeft(ctx, "T1", -1)
	})
	assert.ErrorIs(t, err, ErrSpotsOutOfRange)

	err = s.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.GetTimeslotForUpdate(ctx, "T1"); err != nil {
			return err
		}
		return tx.UpdateTimeslotSpotsLeft(ctx, "T1", 6)
	})
	assert.ErrorIs(t, err, ErrSpotsOutOfRange)

	err = s.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.InsertBooking(ctx, memBooking("b1", "missing", 1))
	})
	assert.ErrorIs(t, err, ErrTimeslotNotFound)

	err = s.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.GetTimeslotForUpdate(ctx, "missing")
		return err
	})
	assert.ErrorIs(t, err, ErrTimeslotNotFound)
}

func TestMemoryStore_DuplicateBookingID(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()
	insert := func(ctx context.Context, tx Tx) error { return tx.InsertBooking(ctx, memBooking("b1", "T1", 1)) }

	require.NoError(t, s.WithinTx(ctx, insert))
	assert.ErrorIs(t, s.WithinTx(ctx, insert), ErrDuplicateBooking)

	err := s.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.InsertBooking(ctx, memBooking("b2", "T1", 1)); err != nil {
			return err
		}
		return tx.InsertBooking(ctx, memBooking("b2", "T1", 1))
	})
	assert.ErrorIs(t, err, ErrDuplicateBooking)
}

func TestMemoryStore_LockIsPerTimeslot(t *testing.T) {
	s := seededMemoryStore(t)
	locked := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = s.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error {
			if _, err := tx.GetTimeslotForUpdate(ctx, "T1"); err != nil {
				return err
			}
			close(locked)
			<-done
			return nil
		})
	}()
	<-locked
	defer close(done)

	// T2 is free while T1 is held.
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error {
		_, err := tx.GetTimeslotForUpdate(ctx, "T2")
		return err
	})
	require.NoError(t, err)

	// T1 waits until the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = s.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.GetTimeslotForUpdate(ctx, "T1")
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryStore_LockReleasedAfterTx(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()
	lock := func(ctx context.Context, tx Tx) error {
		_, err := tx.GetTimeslotForUpdate(ctx, "T1")
		return err
	}

	require.NoError(t, s.WithinTx(ctx, lock))
	require.Error(t, s.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := lock(ctx, tx); err != nil {
			return err
		}
		return errors.New("abort")
	}))

	short, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	assert.NoError(t, s.WithinTx(short, lock))
}

func TestMemoryStore_ExpiredContextDiscardsWrites(t *testing.T) {
	s := seededMemoryStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := s.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.GetTimeslotForUpdate(ctx, "T1"); err != nil {
			return err
		}
		if err := tx.UpdateTimeslotSpotsLeft(ctx, "T1", 2); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	ts, _ := s.GetTimeslot(context.Background(), "T1")
	assert.Equal(t, 5, ts.SpotsLeft)
}

func TestMemoryStore_UpsertKeepsExistingRow(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertTimeslot(ctx, &model.Timeslot{ID: "T1", ExperienceID: "1", Date: "2026-10-16", Time: "09:00 AM", TotalSpots: 9, SpotsLeft: 9}))
	ts, _ := s.GetTimeslot(ctx, "T1")
	assert.Equal(t, 5, ts.TotalSpots)

	slots, err := s.ListTimeslots(ctx, "1", "2026-10-16")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "T2", slots[0].ID, "labels sort as strings at the store level")

	none, err := s.ListTimeslots(ctx, "1", "2030-01-01")
	require.NoError(t, err)
	assert.NotNil(t, none)
}

func TestMemoryStore_UnknownIDsDoNotGrowLockTable(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()
	lookup := func(id string) error {
		return s.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
			_, err := tx.GetTimeslotForUpdate(ctx, id)
			return err
		})
	}

	require.NoError(t, lookup("T1"))
	for i := 0; i < 1000; i++ {
		require.ErrorIs(t, lookup(fmt.Sprintf("missing-%d", i)), ErrTimeslotNotFound)
	}

	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	assert.Len(t, s.locks, 1)
}
