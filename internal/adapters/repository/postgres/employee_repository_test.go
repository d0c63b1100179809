package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/workforce-api/internal/core/employee"
	pgdb "github.com/ogurasousui/workforce-api/internal/platform/db/postgres"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
)

var employeeRowColumns = []string{
	"id", "user_id", "employee_code", "first_name", "last_name", "phone", "address", "date_of_birth",
	"hire_date", "department", "position", "base_salary", "created_at", "updated_at",
	"user_id", "username", "email", "role", "is_active", "user_created_at", "user_updated_at",
}

func TestScanEmployee_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	if _, err := scanEmployee(row); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestTranslateEmployeePgError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"code", &pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "employees_employee_code_key"}, employee.ErrEmployeeCodeAlreadyExists},
		{"user", &pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "employees_user_id_key"}, employee.ErrUserAlreadyHasEmployee},
		{"fk", &pgconn.PgError{Code: pgdb.ForeignKeyViolationCode, ConstraintName: "employees_user_id_fkey"}, employee.ErrUserNotFound},
		{"salary check", &pgconn.PgError{Code: pgdb.CheckViolationCode, ConstraintName: "employees_base_salary_check"}, employee.ErrInvalidBaseSalary},
		{"malformed uuid", &pgconn.PgError{Code: pgdb.InvalidTextCode}, employee.ErrEmployeeNotFound},
		{"too long", &pgconn.PgError{Code: pgdb.StringTruncationCode}, employee.ErrValueTooLong},
		{"salary overflow", &pgconn.PgError{Code: pgdb.NumericOutOfRangeCode}, employee.ErrInvalidBaseSalary},
	}

	for _, tc := range cases {
		if got := translateEmployeePgError(tc.err); !errors.Is(got, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}

	if translateEmployeePgError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestEmployeeRepository_FindByUserID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	now := time.Now().UTC()
	hireDate := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN users u ON u.id = e.user_id WHERE e.user_id = $1 LIMIT 1`)).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow("emp-1", "user-1", "E100", "Ada", "Lovelace", nil, nil, nil,
				hireDate, "Engineering", "Engineer", "5000.00", now, now,
				"user-1", "ada", "ada@example.com", "employee", true, now, now))

	found, err := repo.FindByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("FindByUserID returned error: %v", err)
	}

	if found.EmployeeCode != "E100" || found.Phone != nil || found.DateOfBirth != nil {
		t.Fatalf("unexpected employee %+v", found)
	}
	if found.Department == nil || *found.Department != "Engineering" {
		t.Fatalf("unexpected department %v", found.Department)
	}
	if found.BaseSalary == nil || !found.BaseSalary.Equal(decimal.RequireFromString("5000")) {
		t.Fatalf("unexpected base salary %v", found.BaseSalary)
	}
	if found.User == nil || found.User.Email != "ada@example.com" {
		t.Fatalf("expected joined user snapshot, got %+v", found.User)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_Create_UserAlreadyLinked(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	now := time.Now().UTC()
	hireDate := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	salary := decimal.RequireFromString("4200.50")

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO employees`)).
		WithArgs("user-1", "E100", "Ada", "Lovelace", nil, nil, nil, hireDate, nil, nil, "4200.5", now, now).
		WillReturnError(&pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "employees_user_id_key"})

	_, err = repo.Create(context.Background(), &employee.Employee{
		UserID:       "user-1",
		EmployeeCode: "E100",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		HireDate:     hireDate,
		BaseSalary:   &salary,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if !errors.Is(err, employee.ErrUserAlreadyHasEmployee) {
		t.Fatalf("expected ErrUserAlreadyHasEmployee, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_List_WithDepartmentFilter(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	department := "Sales"
	now := time.Now().UTC()

	query := regexp.QuoteMeta(`WHERE e.department = $1 ORDER BY e.created_at DESC, e.id DESC LIMIT $2 OFFSET $3`)
	rows := pgxmock.NewRows(employeeRowColumns).
		AddRow("emp-1", "user-1", "S1", "A", "One", nil, nil, nil, now, "Sales", nil, nil, now, now,
			"user-1", "one", "one@example.com", "employee", true, now, now).
		AddRow("emp-2", "user-2", "S2", "B", "Two", nil, nil, nil, now, "Sales", nil, nil, now, now,
			"user-2", "two", "two@example.com", "employee", true, now, now)

	mock.ExpectQuery(query).
		WithArgs("Sales", 2, 10).
		WillReturnRows(rows)

	employees, nextToken, err := repo.List(context.Background(), employee.ListEmployeesFilter{Department: &department, Limit: 1, Offset: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(employees) != 1 || employees[0].ID != "emp-1" {
		t.Fatalf("unexpected employees %+v", employees)
	}
	if employees[0].BaseSalary != nil {
		t.Fatalf("expected nil base salary, got %v", employees[0].BaseSalary)
	}
	if nextToken != "11" {
		t.Fatalf("expected next token '11', got %s", nextToken)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_List_InvalidArguments(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	if _, _, err := repo.List(context.Background(), employee.ListEmployeesFilter{Limit: 0}); !errors.Is(err, employee.ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
	if _, _, err := repo.List(context.Background(), employee.ListEmployeesFilter{Limit: 1, Offset: -1}); !errors.Is(err, employee.ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}
