package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/workforce-api/internal/core/employee"
	pgdb "github.com/ogurasousui/workforce-api/internal/platform/db/postgres"
)

const employeeSelect = `
        SELECT e.id,
               e.user_id,
               e.employee_code,
               e.first_name,
               e.last_name,
               e.phone,
               e.address,
               e.date_of_birth,
               e.hire_date,
               e.department,
               e.position,
               e.base_salary::text,
               e.created_at,
               e.updated_at,
               u.id,
               u.username,
               u.email,
               u.role,
               u.is_active,
               u.created_at,
               u.updated_at
          FROM employees e
          JOIN users u ON u.id = e.user_id`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH inserted AS (
            INSERT INTO employees (user_id, employee_code, first_name, last_name, phone, address, date_of_birth,
                                   hire_date, department, position, base_salary, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
            RETURNING *
        )
        SELECT e.id, e.user_id, e.employee_code, e.first_name, e.last_name, e.phone, e.address, e.date_of_birth,
               e.hire_date, e.department, e.position, e.base_salary::text, e.created_at, e.updated_at,
               u.id, u.username, u.email, u.role, u.is_active, u.created_at, u.updated_at
          FROM inserted e
          JOIN users u ON u.id = e.user_id
    `,
		e.UserID,
		e.EmployeeCode,
		e.FirstName,
		e.LastName,
		nullableText(e.Phone),
		nullableText(e.Address),
		nullableDate(e.DateOfBirth),
		dateOnly(e.HireDate),
		nullableText(e.Department),
		nullableText(e.Position),
		nullableDecimal(e.BaseSalary),
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員のプロフィールと雇用条件を更新します。社員コードと入社日は変更しません。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH updated AS (
            UPDATE employees
               SET first_name = $1,
                   last_name = $2,
                   phone = $3,
                   address = $4,
                   date_of_birth = $5,
                   department = $6,
                   position = $7,
                   base_salary = $8,
                   updated_at = $9
             WHERE id = $10
            RETURNING *
        )
        SELECT e.id, e.user_id, e.employee_code, e.first_name, e.last_name, e.phone, e.address, e.date_of_birth,
               e.hire_date, e.department, e.position, e.base_salary::text, e.created_at, e.updated_at,
               u.id, u.username, u.email, u.role, u.is_active, u.created_at, u.updated_at
          FROM updated e
          JOIN users u ON u.id = e.user_id
    `,
		e.FirstName,
		e.LastName,
		nullableText(e.Phone),
		nullableText(e.Address),
		nullableDate(e.DateOfBirth),
		nullableText(e.Department),
		nullableText(e.Position),
		nullableDecimal(e.BaseSalary),
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return r.findOne(ctx, employeeSelect+`
         WHERE e.id = $1
         LIMIT 1
    `, id)
}

// FindByUserID はユーザー ID で社員を取得します。
func (r *EmployeeRepository) FindByUserID(ctx context.Context, userID string) (*employee.Employee, error) {
	return r.findOne(ctx, employeeSelect+`
         WHERE e.user_id = $1
         LIMIT 1
    `, userID)
}

// FindByCode は社員コードで検索します。
func (r *EmployeeRepository) FindByCode(ctx context.Context, employeeCode string) (*employee.Employee, error) {
	return r.findOne(ctx, employeeSelect+`
         WHERE e.employee_code = $1
         LIMIT 1
    `, employeeCode)
}

func (r *EmployeeRepository) findOne(ctx context.Context, query string, args ...any) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanEmployee(exec.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は社員の一覧を取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 3)
	whereClause := ""
	if filter.Department != nil {
		args = append(args, *filter.Department)
		whereClause = "\n         WHERE e.department = $" + strconv.Itoa(len(args))
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := employeeSelect + whereClause + `
         ORDER BY e.created_at DESC, e.id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeePgError(err)
	}

	var nextToken string
	if len(employees) == limitWithBuffer {
		employees = employees[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return employees, nextToken, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id           string
		userID       string
		code         string
		firstName    string
		lastName     string
		phone        sql.NullString
		address      sql.NullString
		dateOfBirth  sql.NullTime
		hireDate     time.Time
		department   sql.NullString
		position     sql.NullString
		baseSalary   sql.NullString
		createdAt    time.Time
		updatedAt    time.Time
		userJoinedID string
		username     string
		userEmail    string
		userRole     string
		userActive   bool
		userCreated  time.Time
		userUpdated  time.Time
	)

	if err := row.Scan(
		&id,
		&userID,
		&code,
		&firstName,
		&lastName,
		&phone,
		&address,
		&dateOfBirth,
		&hireDate,
		&department,
		&position,
		&baseSalary,
		&createdAt,
		&updatedAt,
		&userJoinedID,
		&username,
		&userEmail,
		&userRole,
		&userActive,
		&userCreated,
		&userUpdated,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	salary, err := decimalPtr(baseSalary)
	if err != nil {
		return nil, err
	}

	return &employee.Employee{
		ID:           id,
		UserID:       userID,
		EmployeeCode: code,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        textPtr(phone),
		Address:      textPtr(address),
		DateOfBirth:  datePtr(dateOfBirth),
		HireDate:     dateOnly(hireDate),
		Department:   textPtr(department),
		Position:     textPtr(position),
		BaseSalary:   salary,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		User: &employee.UserSnapshot{
			ID:        userJoinedID,
			Username:  username,
			Email:     userEmail,
			Role:      userRole,
			IsActive:  userActive,
			CreatedAt: userCreated,
			UpdatedAt: userUpdated,
		},
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	if constraint, ok := pgdb.ConstraintViolation(err, pgdb.UniqueViolationCode); ok {
		switch constraint {
		case "employees_user_id_key":
			return employee.ErrUserAlreadyHasEmployee
		default:
			return employee.ErrEmployeeCodeAlreadyExists
		}
	}
	if _, ok := pgdb.ConstraintViolation(err, pgdb.ForeignKeyViolationCode); ok {
		return employee.ErrUserNotFound
	}
	if _, ok := pgdb.ConstraintViolation(err, pgdb.CheckViolationCode); ok {
		return employee.ErrInvalidBaseSalary
	}
	if _, ok := pgdb.ConstraintViolation(err, pgdb.InvalidTextCode); ok {
		return employee.ErrEmployeeNotFound
	}

	if _, ok := pgdb.ConstraintViolation(err, pgdb.StringTruncationCode); ok {
		return employee.ErrValueTooLong
	}
	if _, ok := pgdb.ConstraintViolation(err, pgdb.NumericOutOfRangeCode); ok {
		return employee.ErrInvalidBaseSalary
	}

	return err
}
