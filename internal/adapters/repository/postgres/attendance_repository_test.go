package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/workforce-api/internal/core/attendance"
	pgdb "github.com/ogurasousui/workforce-api/internal/platform/db/postgres"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var attendanceRowColumns = []string{"id", "employee_id", "date", "check_in_at", "check_out_at", "status", "notes", "created_at", "updated_at"}

func TestTranslateAttendancePgError(t *testing.T) {
	t.Parallel()

	if got := translateAttendancePgError(&pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "attendance_employee_date_key"}); !errors.Is(got, attendance.ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", got)
	}
	if got := translateAttendancePgError(&pgconn.PgError{Code: pgdb.ForeignKeyViolationCode}); !errors.Is(got, attendance.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", got)
	}
	if got := translateAttendancePgError(&pgconn.PgError{Code: pgdb.CheckViolationCode}); !errors.Is(got, attendance.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", got)
	}
	if got := translateAttendancePgError(&pgconn.PgError{Code: pgdb.StringTruncationCode}); !errors.Is(got, attendance.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus for truncated value, got %v", got)
	}
}

func TestAttendanceRepository_FindByEmployeeAndDate(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAttendanceRepository(mock)
	day := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	checkIn := day.Add(9 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM attendance WHERE employee_id = $1 AND date = $2 LIMIT 1`)).
		WithArgs("emp-1", day).
		WillReturnRows(pgxmock.NewRows(attendanceRowColumns).
			AddRow("att-1", "emp-1", day, checkIn, nil, "present", nil, checkIn, checkIn))

	rec, err := repo.FindByEmployeeAndDate(context.Background(), "emp-1", day.Add(15*time.Hour))
	if err != nil {
		t.Fatalf("FindByEmployeeAndDate returned error: %v", err)
	}

	if rec.CheckInAt == nil || !rec.CheckInAt.Equal(checkIn) || rec.CheckOutAt != nil || rec.Notes != nil {
		t.Fatalf("unexpected record %+v", rec)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAttendanceRepository_List_WithRange(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAttendanceRepository(mock)
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM attendance WHERE employee_id = $1 AND date >= $2 AND date <= $3 ORDER BY date DESC`)).
		WithArgs("emp-1", from, to).
		WillReturnRows(pgxmock.NewRows(attendanceRowColumns).
			AddRow("att-2", "emp-1", from.AddDate(0, 0, 1), nil, nil, "sick_leave", "flu", now, now).
			AddRow("att-1", "emp-1", from, nil, nil, "holiday", nil, now, now))

	records, err := repo.List(context.Background(), attendance.ListFilter{EmployeeID: "emp-1", From: &from, To: &to})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(records) != 2 || records[0].Status != attendance.StatusSickLeave {
		t.Fatalf("unexpected records %+v", records)
	}
	if records[0].Notes == nil || *records[0].Notes != "flu" {
		t.Fatalf("unexpected notes %v", records[0].Notes)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAttendanceRepository_List_RequiresEmployee(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAttendanceRepository(mock)

	if _, err := repo.List(context.Background(), attendance.ListFilter{}); !errors.Is(err, attendance.ErrInvalidEmployeeID) {
		t.Fatalf("expected ErrInvalidEmployeeID, got %v", err)
	}
}
