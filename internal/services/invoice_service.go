package services

import (
	"context"
	"errors"

	"invoice-backend/internal/cache"
	"invoice-backend/internal/events"
	"invoice-backend/internal/logger"
	"invoice-backend/internal/metrics"
	"invoice-backend/internal/models"
	"invoice-backend/internal/totals"
	"invoice-backend/internal/validation"
)

// InvoiceStore is the persistence the invoice service needs.
// Every method is scoped to the owning account.
type InvoiceStore interface {
	Create(ctx context.Context, accountID string, inv *models.Invoice) error
	Get(ctx context.Context, accountID, invoiceID string) (*models.Invoice, error)
	Update(ctx context.Context, accountID, invoiceID string, inv *models.Invoice) error
	Delete(ctx context.Context, accountID, invoiceID string) (*models.Invoice, error)
	List(ctx context.Context, accountID string, filter models.InvoiceFilter) ([]*models.Invoice, error)
	NextInvoiceNumber(ctx context.Context, accountID string) (string, error)
}

// InvoiceCache is the read-through cache for invoice reads. Entries are keyed
// by the account's current generation; InvalidateInvoiceCaches moves the
// generation on so entries written from an older read are never served.
type InvoiceCache interface {
	InvoiceGeneration(ctx context.Context, accountID string) (int64, bool)
	GetJSON(ctx context.Context, name, key string, dst any) bool
	SetJSON(ctx context.Context, key string, v any)
	InvalidateInvoiceCaches(ctx context.Context, accountID string)
}

type InvoiceService struct {
	Repo   InvoiceStore
	Cache  InvoiceCache
	Events events.Publisher
}

// NewInvoiceService wires the service. A nil cache disables caching.
func NewInvoiceService(repo InvoiceStore, c InvoiceCache, publisher events.Publisher) *InvoiceService {
	if c == nil {
		c = cache.Disabled()
	}
	return &InvoiceService{
		Repo:   repo,
		Cache:  c,
		Events: publisher,
	}
}

// Create validates payload, computes totals and stores the invoice.
// Validation failures come back as validation.FieldErrors.
func (s *InvoiceService) Create(ctx context.Context, accountID string, payload map[string]any) (*models.Invoice, error) {
	res := validation.ValidateInvoice(payload)
	if !res.OK() {
		metrics.InvoiceOperations.WithLabelValues("create", metrics.OutcomeInvalid).Inc()
		return nil, res.Errors
	}

	inv, errs := s.build(res.Invoice)
	if errs != nil {
		metrics.InvoiceOperations.WithLabelValues("create", metrics.OutcomeInvalid).Inc()
		return nil, errs
	}

	if err := s.Repo.Create(ctx, accountID, inv); err != nil {
		recordOutcome("create", err)
		return nil, err
	}

	recordOutcome("create", nil)
	metrics.InvoiceTotalAmount.WithLabelValues(string(inv.Currency)).Add(inv.TotalAmount.InexactFloat64())
	s.afterWrite(ctx, accountID, events.InvoiceCreated, inv)

	log := logger.WithAccountID(accountID)
	log.Info().Str("invoice_id", inv.ID).Str("invoice_no", inv.InvoiceNo).Msg("invoice created")
	return inv, nil
}

// Get returns an owned invoice
func (s *InvoiceService) Get(ctx context.Context, accountID, invoiceID string) (*models.Invoice, error) {
	gen, cacheable := s.Cache.InvoiceGeneration(ctx, accountID)
	key := cache.InvoiceKey(accountID, gen, invoiceID)

	var cached models.Invoice
	if cacheable && s.Cache.GetJSON(ctx, "invoice", key, &cached) {
		return &cached, nil
	}

	inv, err := s.Repo.Get(ctx, accountID, invoiceID)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.Cache.SetJSON(ctx, key, inv)
	}
	return inv, nil
}

// List returns the account's invoices newest first. Unfiltered listings are cached.
func (s *InvoiceService) List(ctx context.Context, accountID string, filter models.InvoiceFilter) ([]*models.Invoice, error) {
	gen, cacheable := s.Cache.InvoiceGeneration(ctx, accountID)
	useCache := cacheable && filter == (models.InvoiceFilter{})
	key := cache.InvoiceListKey(accountID, gen)

	if useCache {
		var cached []*models.Invoice
		if s.Cache.GetJSON(ctx, "invoice_list", key, &cached) {
			return cached, nil
		}
	}

	invoices, err := s.Repo.List(ctx, accountID, filter)
	if err != nil {
		return nil, err
	}
	if useCache {
		s.Cache.SetJSON(ctx, key, invoices)
	}
	return invoices, nil
}

// Update replaces header and items of an owned invoice with a freshly
// validated draft. Totals are recomputed from the new items.
func (s *InvoiceService) Update(ctx context.Context, accountID, invoiceID string, payload map[string]any) (*models.Invoice, error) {
	res := validation.ValidateInvoice(payload)
	if !res.OK() {
		metrics.InvoiceOperations.WithLabelValues("update", metrics.OutcomeInvalid).Inc()
		return nil, res.Errors
	}

	inv, errs := s.build(res.Invoice)
	if errs != nil {
		metrics.InvoiceOperations.WithLabelValues("update", metrics.OutcomeInvalid).Inc()
		return nil, errs
	}

	if err := s.Repo.Update(ctx, accountID, invoiceID, inv); err != nil {
		recordOutcome("update", err)
		return nil, err
	}

	recordOutcome("update", nil)
	s.afterWrite(ctx, accountID, events.InvoiceUpdated, inv)
	return inv, nil
}

// Delete removes an owned invoice and returns it
func (s *InvoiceService) Delete(ctx context.Context, accountID, invoiceID string) (*models.Invoice, error) {
	inv, err := s.Repo.Delete(ctx, accountID, invoiceID)
	if err != nil {
		recordOutcome("delete", err)
		return nil, err
	}

	recordOutcome("delete", nil)
	s.afterWrite(ctx, accountID, events.InvoiceDeleted, inv)
	return inv, nil
}

// NextInvoiceNumber proposes the next sequential number for the account
func (s *InvoiceService) NextInvoiceNumber(ctx context.Context, accountID string) (string, error) {
	return s.Repo.NextInvoiceNumber(ctx, accountID)
}

// build derives totals for a validated draft and checks them against the
// stored precision
func (s *InvoiceService) build(in *models.InvoiceInput) (*models.Invoice, validation.FieldErrors) {
	inv := &models.Invoice{}
	totals.Apply(inv, in)
	if errs := validation.ValidateTotals(inv); errs.HasErrors() {
		return nil, errs
	}
	return inv, nil
}

func (s *InvoiceService) afterWrite(ctx context.Context, accountID, eventType string, inv *models.Invoice) {
	s.Cache.InvalidateInvoiceCaches(ctx, accountID)
	if s.Events != nil {
		s.Events.Publish(accountID, events.Event{
			Type:      eventType,
			InvoiceID: inv.ID,
			InvoiceNo: inv.InvoiceNo,
		})
	}
}

func recordOutcome(op string, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, models.ErrInvoiceNotFound), errors.Is(err, models.ErrAccountNotFound):
		outcome = metrics.OutcomeNotFound
	case errors.Is(err, models.ErrDuplicateInvoiceNumber):
		outcome = metrics.OutcomeConflict
	default:
		outcome = metrics.OutcomeError
	}
	metrics.InvoiceOperations.WithLabelValues(op, outcome).Inc()
}
