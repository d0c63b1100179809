package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/workforce-api/internal/core/salary"
	pgdb "github.com/ogurasousui/workforce-api/internal/platform/db/postgres"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
)

var salaryRowColumns = []string{
	"id", "employee_id", "month", "year", "base_amount", "overtime_amount", "bonus",
	"deductions", "net_amount", "status", "payment_date", "created_at", "updated_at",
}

func TestTranslateSalaryPgError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"period", &pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "salary_records_employee_period_key"}, salary.ErrRecordAlreadyExists},
		{"employee", &pgconn.PgError{Code: pgdb.ForeignKeyViolationCode, ConstraintName: "salary_records_employee_id_fkey"}, salary.ErrEmployeeNotFound},
		{"month", &pgconn.PgError{Code: pgdb.CheckViolationCode, ConstraintName: "salary_records_month_check"}, salary.ErrInvalidPeriod},
		{"status", &pgconn.PgError{Code: pgdb.CheckViolationCode, ConstraintName: "salary_records_status_check"}, salary.ErrInvalidStatus},
		{"malformed uuid", &pgconn.PgError{Code: pgdb.InvalidTextCode}, salary.ErrRecordNotFound},
		{"amount overflow", &pgconn.PgError{Code: pgdb.NumericOutOfRangeCode}, salary.ErrInvalidAmount},
		{"too long", &pgconn.PgError{Code: pgdb.StringTruncationCode}, salary.ErrInvalidStatus},
	}

	for _, tc := range cases {
		if got := translateSalaryPgError(tc.err); !errors.Is(got, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestSalaryRepository_Create(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewSalaryRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO salary_records`)).
		WithArgs("emp-1", 5, 2025, "5000", "250.5", "0", "100", "5150.5", "pending", nil, now, now).
		WillReturnRows(pgxmock.NewRows(salaryRowColumns).
			AddRow("sal-1", "emp-1", 5, 2025, "5000.00", "250.50", "0.00", "100.00", "5150.50", "pending", nil, now, now))

	created, err := repo.Create(context.Background(), &salary.Record{
		EmployeeID:     "emp-1",
		Month:          5,
		Year:           2025,
		BaseAmount:     decimal.RequireFromString("5000"),
		OvertimeAmount: decimal.RequireFromString("250.50"),
		Bonus:          decimal.Zero,
		Deductions:     decimal.RequireFromString("100"),
		NetAmount:      decimal.RequireFromString("5150.50"),
		Status:         salary.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if created.ID != "sal-1" || created.PaymentDate != nil {
		t.Fatalf("unexpected record %+v", created)
	}
	if !created.NetAmount.Equal(decimal.RequireFromString("5150.5")) {
		t.Fatalf("unexpected net amount %s", created.NetAmount)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSalaryRepository_FindByIDForUpdate_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewSalaryRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM salary_records WHERE id = $1 LIMIT 1 FOR UPDATE`)).
		WithArgs("sal-404").
		WillReturnRows(pgxmock.NewRows(salaryRowColumns))

	if _, err := repo.FindByIDForUpdate(context.Background(), "sal-404"); !errors.Is(err, salary.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSalaryRepository_ListByEmployee(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewSalaryRepository(mock)
	now := time.Now().UTC()
	paidOn := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM salary_records WHERE employee_id = $1 ORDER BY year DESC, month DESC`)).
		WithArgs("emp-1").
		WillReturnRows(pgxmock.NewRows(salaryRowColumns).
			AddRow("sal-2", "emp-1", 5, 2025, "5000.00", "0.00", "0.00", "0.00", "5000.00", "pending", nil, now, now).
			AddRow("sal-1", "emp-1", 4, 2025, "5000.00", "0.00", "0.00", "0.00", "5000.00", "paid", paidOn, now, now))

	records, err := repo.ListByEmployee(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("ListByEmployee returned error: %v", err)
	}

	if len(records) != 2 || records[0].Month != 5 {
		t.Fatalf("unexpected records %+v", records)
	}
	if records[1].Status != salary.StatusPaid || records[1].PaymentDate == nil || !records[1].PaymentDate.Equal(paidOn) {
		t.Fatalf("unexpected paid record %+v", records[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestScanSalaryRecord_InvalidNumeric(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		*(dest[4].(*string)) = "not-a-number"
		for _, i := range []int{5, 6, 7, 8} {
			*(dest[i].(*string)) = "0"
		}
		return nil
	}}

	if _, err := scanSalaryRecord(row); err == nil {
		t.Fatalf("expected parse error for malformed numeric")
	}
}
