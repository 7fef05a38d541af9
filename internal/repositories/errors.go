package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Constraint names from the migrations
const (
	invoiceNumberConstraint = "invoices_user_invoice_no_key"
	accountEmailIndex       = "idx_accounts_email"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// validID reports whether id can be a row key. Anything else can never match
// a row, so callers short-circuit to not-found instead of sending it to postgres.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
