package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"invoice-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, name, email, password_hash, business_name, logo, created_at, updated_at`

type AccountRepository struct {
	DB *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{DB: db}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.BusinessName, &a.Logo, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new account; a taken email yields ErrEmailTaken
func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	a.ID = uuid.NewString()
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))

	err := r.DB.QueryRow(ctx,
		`INSERT INTO accounts(id, name, email, password_hash, business_name, logo)
		 VALUES($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		a.ID, a.Name, a.Email, a.PasswordHash, a.BusinessName, a.Logo,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err, accountEmailIndex) {
		return models.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) Get(ctx context.Context, id string) (*models.Account, error) {
	if !validID(id) {
		return nil, models.ErrAccountNotFound
	}
	return scanAccount(r.DB.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return scanAccount(r.DB.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE LOWER(email) = LOWER($1)`, strings.TrimSpace(email)))
}

// UpdateProfile applies the non-nil fields of req and returns the new state
func (r *AccountRepository) UpdateProfile(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.Account, error) {
	if !validID(id) {
		return nil, models.ErrAccountNotFound
	}

	var email *string
	if req.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*req.Email))
		email = &e
	}

	a, err := scanAccount(r.DB.QueryRow(ctx,
		`UPDATE accounts
		 SET name = COALESCE($2, name),
		     email = COALESCE($3, email),
		     business_name = COALESCE($4, business_name),
		     logo = COALESCE($5, logo),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+accountColumns,
		id, req.Name, email, req.BusinessName, req.Logo))
	if isUniqueViolation(err, accountEmailIndex) {
		return nil, models.ErrEmailTaken
	}
	return a, err
}

// UpdateLogo stores the logo reference (URL or object key)
func (r *AccountRepository) UpdateLogo(ctx context.Context, id, logo string) (*models.Account, error) {
	if !validID(id) {
		return nil, models.ErrAccountNotFound
	}
	return scanAccount(r.DB.QueryRow(ctx,
		`UPDATE accounts SET logo = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+accountColumns, id, logo))
}
