package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/experience-booking/internal/model"
)

var (
	selectForUpdate = regexp.QuoteMeta("SELECT id, experience_id, date, time, total_spots, spots_left FROM timeslots WHERE id = ? FOR UPDATE")
	updateSpots     = regexp.QuoteMeta("UPDATE timeslots SET spots_left = ? WHERE id = ?")
	insertBooking   = regexp.QuoteMeta("INSERT INTO bookings (id, experience_id, timeslot_id, date, time, customer_name, customer_email, seats, created_at)")
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewSQLStore(db), mock
}

func timeslotRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "experience_id", "date", "time", "total_spots", "spots_left"})
}

func day(s string) time.Time {
	d, _ := time.Parse(model.DateLayout, s)
	return d
}

func testBooking() *model.Booking {
	return &model.Booking{
		ID:            "0b0c4f3e-4a8e-4bb4-9d39-8c7b0e2f0d11",
		ExperienceID:  "1",
		TimeslotID:    "T1",
		Date:          "2026-10-16",
		Time:          "09:00 AM",
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Seats:         3,
		CreatedAt:     time.Date(2026, 10, 16, 7, 0, 0, 0, time.UTC),
	}
}

func TestSQLStore_WithinTx_CommitsDecrementAndInsert(t *testing.T) {
	store, mock := newMockStore(t)
	b := testBooking()
	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).WithArgs("T1").
		WillReturnRows(timeslotRows().AddRow("T1", "1", day("2026-10-16"), "09:00 AM", 5, 5))
	mock.ExpectExec(updateSpots).WithArgs(2, "T1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertBooking).
		WithArgs(b.ID, "1", "T1", "2026-10-16", "09:00 AM", "Ada", "ada@example.com", 3, b.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error {
		ts, err := tx.GetTimeslotForUpdate(ctx, "T1")
		if err != nil {
			return err
		}
		assert.Equal(t, "2026-10-16", ts.Date)
		if err := tx.UpdateTimeslotSpotsLeft(ctx, ts.ID, ts.SpotsLeft-3); err != nil {
			return err
		}
		return tx.InsertBooking(ctx, b)
	})

	require.NoError(t, err)
}

func TestSQLStore_WithinTx_RollsBackWhenFnFails(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).WithArgs("T1").
		WillReturnRows(timeslotRows().AddRow("T1", "1", day("2026-10-16"), "09:00 AM", 5, 5))
	mock.ExpectExec(updateSpots).WithArgs(4, "T1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error {
		if _, err := tx.GetTimeslotForUpdate(ctx, "T1"); err != nil {
			return err
		}
		if err := tx.UpdateTimeslotSpotsLeft(ctx, "T1", 4); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestSQLStore_WithinTx_MissingTimeslot(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).WithArgs("nope").WillReturnRows(timeslotRows())
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error {
		_, err := tx.GetTimeslotForUpdate(ctx, "nope")
		return err
	})

	assert.ErrorIs(t, err, ErrTimeslotNotFound)
}

func TestSQLStore_WithinTx_CommitFailure(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(mysql.ErrInvalidConn)

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error { return nil })

	require.Error(t, err)
	assert.ErrorIs(t, err, mysql.ErrInvalidConn)
	assert.Contains(t, err.Error(), "commit transaction")
}

func TestSQLStore_WithinTx_BeginFailure(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)
	called := false

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.False(t, called)
}

func TestTimeslotRepo_UpdateSpotsLeftTx_Errors(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(updateSpots).WithArgs(1, "gone").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(updateSpots).WithArgs(-1, "T1").WillReturnError(&mysql.MySQLError{Number: mysqlCheckViolated, Message: "Check constraint 'chk_timeslots_spots' is violated."})
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := store.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	assert.ErrorIs(t, store.Timeslots.UpdateSpotsLeftTx(ctx, tx, "gone", 1), ErrTimeslotNotFound)
	assert.ErrorIs(t, store.Timeslots.UpdateSpotsLeftTx(ctx, tx, "T1", -1), ErrSpotsOutOfRange)
}

func TestBookingRepo_CreateTx_DuplicateKey(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(insertBooking).WillReturnError(&mysql.MySQLError{Number: mysqlDuplicateEntry, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error {
		return tx.InsertBooking(ctx, testBooking())
	})

	assert.ErrorIs(t, err, ErrDuplicateBooking)
}

func TestBookingRepo_GetByID(t *testing.T) {
	store, mock := newMockStore(t)
	b := testBooking()
	cols := []string{"id", "experience_id", "timeslot_id", "date", "time", "customer_name", "customer_email", "seats", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = ?")).WithArgs(b.ID).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(b.ID, "1", "T1", day("2026-10-16"), "09:00 AM", "Ada", "ada@example.com", 3, b.CreatedAt))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = ?")).WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(cols))

	got, err := store.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	_, err = store.GetBooking(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExperienceRepo_ListAndGet(t *testing.T) {
	store, mock := newMockStore(t)
	cols := []string{"id", "title", "description", "price", "image", "duration", "location", "rating", "reviews"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM experiences ORDER BY id")).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("1", "Sunset Beach Yoga", "desc", "45.00", "img", "1.5 hours", "Santa Monica Beach", 4.8, 124).
			AddRow("2", "Mountain Hiking Adventure", "desc", "75.50", "img", "4 hours", "Blue Ridge Mountains", 4.9, 89))
	mock.ExpectQuery(regexp.QuoteMeta("FROM experiences WHERE id = ?")).WithArgs("9").
		WillReturnRows(sqlmock.NewRows(cols))

	list, err := store.ListExperiences(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, decimal.RequireFromString("75.5").Equal(list[1].Price))
	assert.Equal(t, 124, list[0].Reviews)

	_, err = store.GetExperience(context.Background(), "9")
	assert.ErrorIs(t, err, ErrExperienceNotFound)
}

func TestTimeslotRepo_ListByExperienceAndDate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE experience_id = ? AND date = ? ORDER BY time, id")).
		WithArgs("1", "2026-10-16").
		WillReturnRows(timeslotRows().
			AddRow("T1", "1", day("2026-10-16"), "09:00 AM", 8, 8).
			AddRow("T2", "1", day("2026-10-16"), "11:00 AM", 5, 0))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE experience_id = ? AND date = ? ORDER BY time, id")).
		WithArgs("1", "2030-01-01").
		WillReturnRows(timeslotRows())

	slots, err := store.ListTimeslots(context.Background(), "1", "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, []model.Timeslot{
		{ID: "T1", ExperienceID: "1", Date: "2026-10-16", Time: "09:00 AM", TotalSpots: 8, SpotsLeft: 8},
		{ID: "T2", ExperienceID: "1", Date: "2026-10-16", Time: "11:00 AM", TotalSpots: 5, SpotsLeft: 0},
	}, slots)

	empty, err := store.ListTimeslots(context.Background(), "1", "2030-01-01")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUpsert_IgnoresExistingRows(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE id = id")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE id = id")).
		WithArgs("T1", "1", "2026-10-16", "09:00 AM", 8, 8).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.UpsertExperience(context.Background(), &model.Experience{ID: "1", Price: decimal.NewFromInt(45)}))
	require.NoError(t, store.UpsertTimeslot(context.Background(), &model.Timeslot{
		ID: "T1", ExperienceID: "1", Date: "2026-10-16", Time: "09:00 AM", TotalSpots: 8, SpotsLeft: 8,
	}))
}
