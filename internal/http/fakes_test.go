package http

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"invoice-backend/internal/invoicenumber"
	"invoice-backend/internal/models"
)

type memStore struct {
	mu       sync.Mutex
	seq      int
	invoices map[string]*models.Invoice
	accounts map[string]*models.Account
}

func newMemStore() *memStore {
	return &memStore{
		invoices: map[string]*models.Invoice{},
		accounts: map[string]*models.Account{},
	}
}

func (m *memStore) id(prefix string) string {
	m.seq++
	return prefix + "-" + strconv.Itoa(m.seq)
}

func copyInvoice(inv *models.Invoice) *models.Invoice {
	c := *inv
	c.Items = append([]models.InvoiceItem(nil), inv.Items...)
	return &c
}

func (m *memStore) owned(accountID, invoiceID string) (*models.Invoice, bool) {
	inv, ok := m.invoices[invoiceID]
	return inv, ok && inv.UserID == accountID
}

func (m *memStore) taken(accountID, invoiceNo, except string) bool {
	for _, inv := range m.invoices {
		if inv.UserID == accountID && inv.InvoiceNo == invoiceNo && inv.ID != except {
			return true
		}
	}
	return false
}

func (m *memStore) latestNo(accountID string) string {
	var last *models.Invoice
	for _, inv := range m.invoices {
		if inv.UserID == accountID && (last == nil || inv.CreatedAt.After(last.CreatedAt)) {
			last = inv
		}
	}
	if last == nil {
		return ""
	}
	return last.InvoiceNo
}

func (m *memStore) stamp(inv *models.Invoice) {
	for i := range inv.Items {
		inv.Items[i].ID = m.id("item")
		inv.Items[i].InvoiceID = inv.ID
	}
}

// InvoiceStore

func (m *memStore) Create(_ context.Context, accountID string, inv *models.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.taken(accountID, inv.InvoiceNo, "") {
		return models.ErrDuplicateInvoiceNumber
	}
	inv.ID = m.id("inv")
	inv.UserID = accountID
	inv.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	inv.UpdatedAt = inv.CreatedAt
	m.stamp(inv)
	m.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

func (m *memStore) Get(_ context.Context, accountID, invoiceID string) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.owned(accountID, invoiceID)
	if !ok {
		return nil, models.ErrInvoiceNotFound
	}
	return copyInvoice(inv), nil
}

func (m *memStore) Update(_ context.Context, accountID, invoiceID string, inv *models.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.owned(accountID, invoiceID)
	if !ok {
		return models.ErrInvoiceNotFound
	}
	if m.taken(accountID, inv.InvoiceNo, invoiceID) {
		return models.ErrDuplicateInvoiceNumber
	}
	inv.ID = invoiceID
	inv.UserID = accountID
	inv.CreatedAt = existing.CreatedAt
	inv.UpdatedAt = time.Now()
	m.stamp(inv)
	m.invoices[invoiceID] = copyInvoice(inv)
	return nil
}

func (m *memStore) Delete(_ context.Context, accountID, invoiceID string) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.owned(accountID, invoiceID)
	if !ok {
		return nil, models.ErrInvoiceNotFound
	}
	delete(m.invoices, invoiceID)
	return inv, nil
}

func (m *memStore) List(_ context.Context, accountID string, f models.InvoiceFilter) ([]*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Invoice{}
	for _, inv := range m.invoices {
		if inv.UserID != accountID || (f.Status != "" && inv.Status != f.Status) {
			continue
		}
		out = append(out, copyInvoice(inv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) NextInvoiceNumber(_ context.Context, accountID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return invoicenumber.Next(m.latestNo(accountID), time.Now().UTC().Year()), nil
}

// accountStore adapts memStore to services.AccountStore; its Get would
// otherwise clash with the invoice Get.
type accountStore struct{ m *memStore }

func (s accountStore) Create(_ context.Context, a *models.Account) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, existing := range s.m.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return models.ErrEmailTaken
		}
	}
	a.ID = s.m.id("acct")
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	c := *a
	s.m.accounts[a.ID] = &c
	return nil
}

func (s accountStore) Get(_ context.Context, id string) (*models.Account, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	a, ok := s.m.accounts[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	c := *a
	return &c, nil
}

func (s accountStore) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, a := range s.m.accounts {
		if strings.EqualFold(a.Email, email) {
			c := *a
			return &c, nil
		}
	}
	return nil, models.ErrAccountNotFound
}

func (s accountStore) UpdateProfile(_ context.Context, id string, req *models.UpdateProfileRequest) (*models.Account, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	a, ok := s.m.accounts[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.BusinessName != nil {
		a.BusinessName = *req.BusinessName
	}
	if req.Email != nil {
		a.Email = *req.Email
	}
	if req.Logo != nil {
		a.Logo = req.Logo
	}
	c := *a
	return &c, nil
}

func (s accountStore) UpdateLogo(_ context.Context, id, logo string) (*models.Account, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	a, ok := s.m.accounts[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	a.Logo = &logo
	c := *a
	return &c, nil
}
