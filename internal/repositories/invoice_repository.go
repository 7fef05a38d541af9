package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"invoice-backend/internal/invoicenumber"
	"invoice-backend/internal/models"
	"invoice-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const invoiceColumns = `id, invoice_no, status, customer_name, customer_email, customer_phone,
	billing_address, issue_date, due_date, currency, tax_rate, notes,
	sub_total, tax, total_amount, user_id, created_at, updated_at`

type InvoiceRepository struct {
	DB *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{DB: db}
}

// lockAccount serializes numbering and creation per account for the rest of tx
func lockAccount(ctx context.Context, tx pgx.Tx, accountID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrAccountNotFound
	}
	return err
}

func nextNumber(ctx context.Context, q querier, accountID string) (string, error) {
	var last string
	err := q.QueryRow(ctx,
		`SELECT invoice_no FROM invoices
		 WHERE user_id = $1
		 ORDER BY created_at DESC, invoice_no DESC
		 LIMIT 1`, accountID,
	).Scan(&last)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("failed to read latest invoice number: %w", err)
	}
	return invoicenumber.Next(last, timeutil.Now().Year()), nil
}

// NextInvoiceNumber proposes the number following the account's latest invoice
func (r *InvoiceRepository) NextInvoiceNumber(ctx context.Context, accountID string) (string, error) {
	if !validID(accountID) {
		return "", models.ErrAccountNotFound
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	if err := lockAccount(ctx, tx, accountID); err != nil {
		return "", err
	}
	next, err := nextNumber(ctx, tx, accountID)
	if err != nil {
		return "", err
	}
	return next, tx.Commit(ctx)
}

// Create inserts the invoice and its items in one transaction. An empty
// InvoiceNo is filled with the next sequential number.
func (r *InvoiceRepository) Create(ctx context.Context, accountID string, inv *models.Invoice) error {
	if !validID(accountID) {
		return models.ErrAccountNotFound
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockAccount(ctx, tx, accountID); err != nil {
		return err
	}

	if inv.InvoiceNo == "" {
		if inv.InvoiceNo, err = nextNumber(ctx, tx, accountID); err != nil {
			return err
		}
	}

	inv.ID = uuid.NewString()
	inv.UserID = accountID

	// created_at uses clock_timestamp so it follows the account lock order
	err = tx.QueryRow(ctx,
		`INSERT INTO invoices(id, invoice_no, status, customer_name, customer_email, customer_phone,
		     billing_address, issue_date, due_date, currency, tax_rate, notes,
		     sub_total, tax, total_amount, user_id, created_at, updated_at)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		     clock_timestamp(), clock_timestamp())
		 RETURNING created_at, updated_at`,
		inv.ID, inv.InvoiceNo, inv.Status, inv.CustomerName, inv.CustomerEmail, inv.CustomerPhone,
		inv.BillingAddress, inv.IssueDate, inv.DueDate, inv.Currency, inv.TaxRate, inv.Notes,
		inv.SubTotal, inv.Tax, inv.TotalAmount, accountID,
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, invoiceNumberConstraint) {
			return models.ErrDuplicateInvoiceNumber
		}
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	if err := insertItems(ctx, tx, inv); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// insertItems writes inv.Items in one batch, assigning fresh ids
func insertItems(ctx context.Context, tx pgx.Tx, inv *models.Invoice) error {
	batch := &pgx.Batch{}
	for i := range inv.Items {
		item := &inv.Items[i]
		item.ID = uuid.NewString()
		item.InvoiceID = inv.ID
		item.Position = i
		batch.Queue(
			`INSERT INTO invoice_items(id, invoice_id, position, description, quantity, unit_price, amount)
			 VALUES($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.InvoiceID, item.Position, item.Description, item.Quantity, item.UnitPrice, item.Amount,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range inv.Items {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert invoice item: %w", err)
		}
	}
	return br.Close()
}

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(&inv.ID, &inv.InvoiceNo, &inv.Status, &inv.CustomerName, &inv.CustomerEmail,
		&inv.CustomerPhone, &inv.BillingAddress, &inv.IssueDate, &inv.DueDate, &inv.Currency,
		&inv.TaxRate, &inv.Notes, &inv.SubTotal, &inv.Tax, &inv.TotalAmount, &inv.UserID,
		&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.Items = []models.InvoiceItem{}
	return &inv, nil
}

// getScoped loads one owned invoice with items. lock adds FOR UPDATE.
func getScoped(ctx context.Context, q querier, accountID, invoiceID string, lock bool) (*models.Invoice, error) {
	if !validID(accountID) || !validID(invoiceID) {
		return nil, models.ErrInvoiceNotFound
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND user_id = $2`
	if lock {
		query += ` FOR UPDATE`
	}

	inv, err := scanInvoice(q.QueryRow(ctx, query, invoiceID, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if err := loadItems(ctx, q, []*models.Invoice{inv}); err != nil {
		return nil, err
	}
	return inv, nil
}

// loadItems fills Items on every invoice in one query, in position order
func loadItems(ctx context.Context, q querier, invoices []*models.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	byID := make(map[string]*models.Invoice, len(invoices))
	ids := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
		ids = append(ids, inv.ID)
	}

	rows, err := q.Query(ctx,
		`SELECT id, invoice_id, position, description, quantity, unit_price, amount
		 FROM invoice_items
		 WHERE invoice_id = ANY($1::uuid[])
		 ORDER BY invoice_id, position`, ids,
	)
	if err != nil {
		return fmt.Errorf("failed to load invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Position, &item.Description,
			&item.Quantity, &item.UnitPrice, &item.Amount); err != nil {
			return err
		}
		if inv, ok := byID[item.InvoiceID]; ok {
			inv.Items = append(inv.Items, item)
		}
	}
	return rows.Err()
}

// Get returns the invoice only when accountID owns it
func (r *InvoiceRepository) Get(ctx context.Context, accountID, invoiceID string) (*models.Invoice, error) {
	return getScoped(ctx, r.DB, accountID, invoiceID, false)
}

// Update replaces the header and every item of an owned invoice atomically.
// The invoice row stays locked from the ownership check to commit.
func (r *InvoiceRepository) Update(ctx context.Context, accountID, invoiceID string, inv *models.Invoice) error {
	if !validID(accountID) || !validID(invoiceID) {
		return models.ErrInvoiceNotFound
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`SELECT created_at FROM invoices WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		invoiceID, accountID,
	).Scan(&inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrInvoiceNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock invoice: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("failed to clear invoice items: %w", err)
	}

	inv.ID = invoiceID
	inv.UserID = accountID

	err = tx.QueryRow(ctx,
		`UPDATE invoices
		 SET invoice_no = $1, status = $2, customer_name = $3, customer_email = $4, customer_phone = $5,
		     billing_address = $6, issue_date = $7, due_date = $8, currency = $9, tax_rate = $10,
		     notes = $11, sub_total = $12, tax = $13, total_amount = $14, updated_at = NOW()
		 WHERE id = $15 AND user_id = $16
		 RETURNING updated_at`,
		inv.InvoiceNo, inv.Status, inv.CustomerName, inv.CustomerEmail, inv.CustomerPhone,
		inv.BillingAddress, inv.IssueDate, inv.DueDate, inv.Currency, inv.TaxRate,
		inv.Notes, inv.SubTotal, inv.Tax, inv.TotalAmount, invoiceID, accountID,
	).Scan(&inv.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, invoiceNumberConstraint) {
			return models.ErrDuplicateInvoiceNumber
		}
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	if err := insertItems(ctx, tx, inv); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Delete removes an owned invoice (items cascade) and returns what was deleted
func (r *InvoiceRepository) Delete(ctx context.Context, accountID, invoiceID string) (*models.Invoice, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	inv, err := getScoped(ctx, tx, accountID, invoiceID, true)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM invoices WHERE id = $1 AND user_id = $2`, invoiceID, accountID); err != nil {
		return nil, fmt.Errorf("failed to delete invoice: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return inv, nil
}

// List returns every owned invoice with items, newest first
func (r *InvoiceRepository) List(ctx context.Context, accountID string, filter models.InvoiceFilter) ([]*models.Invoice, error) {
	invoices := []*models.Invoice{}
	if !validID(accountID) {
		return invoices, nil
	}

	query, args := buildListQuery(accountID, filter)
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadItems(ctx, r.DB, invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// buildListQuery composes the scoped listing with the optional filters
func buildListQuery(accountID string, f models.InvoiceFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{accountID}

	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(invoice_no ILIKE $%d OR customer_name ILIKE $%d)", n, n))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf("issue_date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		conds = append(conds, fmt.Sprintf("issue_date <= $%d", len(args)))
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY created_at DESC`
	return query, args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// CountByStatus counts invoices per status across all accounts
func (r *InvoiceRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.DB.Query(ctx, `SELECT status, COUNT(*) FROM invoices GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
