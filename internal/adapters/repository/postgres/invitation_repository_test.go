package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/workforce-api/internal/core/invitation"
	pgdb "github.com/ogurasousui/workforce-api/internal/platform/db/postgres"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var invitationRowColumns = []string{
	"id", "email", "token", "status", "employee_code", "hire_date", "department", "position",
	"base_salary", "expires_at", "accepted_at", "created_at", "updated_at",
}

func TestTranslateInvitationPgError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"pending email", &pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "invitations_pending_email_key"}, invitation.ErrPendingInvitationForEmail},
		{"pending code", &pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "invitations_pending_employee_code_key"}, invitation.ErrPendingInvitationForEmployeeCode},
		{"token", &pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "invitations_token_key"}, invitation.ErrTokenAlreadyExists},
		{"status check", &pgconn.PgError{Code: pgdb.CheckViolationCode, ConstraintName: "invitations_status_check"}, invitation.ErrInvalidStatus},
		{"too long", &pgconn.PgError{Code: pgdb.StringTruncationCode}, invitation.ErrValueTooLong},
		{"salary overflow", &pgconn.PgError{Code: pgdb.NumericOutOfRangeCode}, invitation.ErrInvalidBaseSalary},
	}

	for _, tc := range cases {
		if got := translateInvitationPgError(tc.err); !errors.Is(got, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}

	unknown := &pgconn.PgError{Code: pgdb.UniqueViolationCode, ConstraintName: "something_else"}
	if got := translateInvitationPgError(unknown); got != error(unknown) {
		t.Fatalf("expected unknown constraint to pass through, got %v", got)
	}
}

func TestInvitationRepository_FindByTokenForUpdate(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewInvitationRepository(mock)
	now := time.Now().UTC()
	hireDate := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM invitations WHERE token = $1 LIMIT 1 FOR UPDATE`)).
		WithArgs("tok").
		WillReturnRows(pgxmock.NewRows(invitationRowColumns).
			AddRow("inv-1", "new@example.com", "tok", "pending", "E100", hireDate, nil, "Engineer",
				"3500.00", now.Add(time.Hour), nil, now, now))

	inv, err := repo.FindByTokenForUpdate(context.Background(), "tok")
	if err != nil {
		t.Fatalf("FindByTokenForUpdate returned error: %v", err)
	}

	if inv.Status != invitation.StatusPending || inv.AcceptedAt != nil || inv.Department != nil {
		t.Fatalf("unexpected invitation %+v", inv)
	}
	if inv.Position == nil || *inv.Position != "Engineer" {
		t.Fatalf("unexpected position %v", inv.Position)
	}
	if inv.BaseSalary == nil || inv.BaseSalary.String() != "3500" {
		t.Fatalf("unexpected base salary %v", inv.BaseSalary)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInvitationRepository_FindByToken_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewInvitationRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM invitations WHERE token = $1 LIMIT 1`)).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(invitationRowColumns))

	if _, err := repo.FindByToken(context.Background(), "missing"); !errors.Is(err, invitation.ErrInvitationNotFound) {
		t.Fatalf("expected ErrInvitationNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInvitationRepository_MarkAccepted(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewInvitationRepository(mock)
	acceptedAt := time.Now().UTC()
	query := regexp.QuoteMeta(`UPDATE invitations SET status = 'accepted', accepted_at = $1, updated_at = $1 WHERE id = $2 AND status = 'pending'`)

	mock.ExpectExec(query).
		WithArgs(acceptedAt, "inv-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(query).
		WithArgs(acceptedAt, "inv-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.MarkAccepted(context.Background(), "inv-1", acceptedAt); err != nil {
		t.Fatalf("MarkAccepted returned error: %v", err)
	}
	if err := repo.MarkAccepted(context.Background(), "inv-1", acceptedAt); !errors.Is(err, invitation.ErrInvitationInvalid) {
		t.Fatalf("expected ErrInvitationInvalid on second accept, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInvitationRepository_List_WithStatusFilter(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewInvitationRepository(mock)
	accepted := invitation.StatusAccepted
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM invitations WHERE status = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`)).
		WithArgs("accepted", 51, 0).
		WillReturnRows(pgxmock.NewRows(invitationRowColumns).
			AddRow("inv-1", "a@example.com", "t1", "accepted", "E1", now, nil, nil, nil, now, now, now, now))

	invitations, nextToken, err := repo.List(context.Background(), invitation.ListInvitationsFilter{Status: &accepted, Limit: 50})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(invitations) != 1 || invitations[0].AcceptedAt == nil {
		t.Fatalf("unexpected invitations %+v", invitations)
	}
	if nextToken != "" {
		t.Fatalf("expected empty next token, got %s", nextToken)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
