package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"invoice-backend/internal/events"
	"invoice-backend/internal/invoicenumber"
	"invoice-backend/internal/models"
)

// memInvoices is an in-memory InvoiceStore with the same ownership rules
// as the postgres repository.
type memInvoices struct {
	mu       sync.Mutex
	seq      int
	invoices map[string]*models.Invoice
}

func newMemInvoices() *memInvoices {
	return &memInvoices{invoices: map[string]*models.Invoice{}}
}

func clone(inv *models.Invoice) *models.Invoice {
	c := *inv
	c.Items = append([]models.InvoiceItem(nil), inv.Items...)
	return &c
}

func (m *memInvoices) nextID() string {
	m.seq++
	return fmt.Sprintf("id-%04d", m.seq)
}

func (m *memInvoices) assignItems(inv *models.Invoice) {
	for i := range inv.Items {
		inv.Items[i].ID = m.nextID()
		inv.Items[i].InvoiceID = inv.ID
		inv.Items[i].Position = i
	}
}

func (m *memInvoices) duplicate(accountID, invoiceNo, exceptID string) bool {
	for _, inv := range m.invoices {
		if inv.UserID == accountID && inv.InvoiceNo == invoiceNo && inv.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *memInvoices) latest(accountID string) string {
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

func (m *memInvoices) Create(_ context.Context, accountID string, inv *models.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if inv.InvoiceNo == "" {
		inv.InvoiceNo = invoicenumber.Next(m.latest(accountID), time.Now().UTC().Year())
	}
	if m.duplicate(accountID, inv.InvoiceNo, "") {
		return models.ErrDuplicateInvoiceNumber
	}

	inv.ID = m.nextID()
	inv.UserID = accountID
	inv.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	inv.UpdatedAt = inv.CreatedAt
	m.assignItems(inv)
	m.invoices[inv.ID] = clone(inv)
	return nil
}

func (m *memInvoices) Get(_ context.Context, accountID, invoiceID string) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.invoices[invoiceID]
	if !ok || inv.UserID != accountID {
		return nil, models.ErrInvoiceNotFound
	}
	return clone(inv), nil
}

func (m *memInvoices) Update(_ context.Context, accountID, invoiceID string, inv *models.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.invoices[invoiceID]
	if !ok || existing.UserID != accountID {
		return models.ErrInvoiceNotFound
	}
	if m.duplicate(accountID, inv.InvoiceNo, invoiceID) {
		return models.ErrDuplicateInvoiceNumber
	}

	inv.ID = invoiceID
	inv.UserID = accountID
	inv.CreatedAt = existing.CreatedAt
	inv.UpdatedAt = time.Now()
	m.assignItems(inv)
	m.invoices[invoiceID] = clone(inv)
	return nil
}

func (m *memInvoices) Delete(_ context.Context, accountID, invoiceID string) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.invoices[invoiceID]
	if !ok || inv.UserID != accountID {
		return nil, models.ErrInvoiceNotFound
	}
	delete(m.invoices, invoiceID)
	return inv, nil
}

func (m *memInvoices) List(_ context.Context, accountID string, f models.InvoiceFilter) ([]*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*models.Invoice{}
	for _, inv := range m.invoices {
		if inv.UserID != accountID {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.Search != "" {
			s := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(inv.InvoiceNo), s) && !strings.Contains(strings.ToLower(inv.CustomerName), s) {
				continue
			}
		}
		if f.From != nil && inv.IssueDate.Before(*f.From) {
			continue
		}
		if f.To != nil && inv.IssueDate.After(*f.To) {
			continue
		}
		out = append(out, clone(inv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memInvoices) NextInvoiceNumber(_ context.Context, accountID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return invoicenumber.Next(m.latest(accountID), time.Now().UTC().Year()), nil
}

type memAccounts struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	seq      int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: map[string]*models.Account{}}
}

func (m *memAccounts) Create(_ context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return models.ErrEmailTaken
		}
	}
	m.seq++
	a.ID = fmt.Sprintf("acct-%d", m.seq)
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	c := *a
	m.accounts[a.ID] = &c
	return nil
}

func (m *memAccounts) Get(_ context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	c := *a
	return &c, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			c := *a
			return &c, nil
		}
	}
	return nil, models.ErrAccountNotFound
}

func (m *memAccounts) UpdateProfile(_ context.Context, id string, req *models.UpdateProfileRequest) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	if req.Email != nil {
		for _, other := range m.accounts {
			if other.ID != id && strings.EqualFold(other.Email, *req.Email) {
				return nil, models.ErrEmailTaken
			}
		}
		a.Email = *req.Email
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.BusinessName != nil {
		a.BusinessName = *req.BusinessName
	}
	if req.Logo != nil {
		a.Logo = req.Logo
	}
	c := *a
	return &c, nil
}

func (m *memAccounts) UpdateLogo(_ context.Context, id, logo string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	a.Logo = &logo
	c := *a
	return &c, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]events.Event
}

func (p *recordingPublisher) Publish(accountID string, evt events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = map[string][]events.Event{}
	}
	p.events[accountID] = append(p.events[accountID], evt)
}

type fakeUploader struct {
	url string
	err error
}

func (f fakeUploader) UploadLogo(context.Context, string, []byte) (string, error) {
	return f.url, f.err
}

// memCache is an in-memory InvoiceCache that stores JSON like the redis one
type memCache struct {
	mu      sync.Mutex
	gens    map[string]int64
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{gens: map[string]int64{}, entries: map[string][]byte{}}
}

func (c *memCache) InvoiceGeneration(_ context.Context, accountID string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[accountID], true
}

func (c *memCache) GetJSON(_ context.Context, _, key string, dst any) bool {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	return ok && json.Unmarshal(data, dst) == nil
}

func (c *memCache) SetJSON(_ context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
}

func (c *memCache) InvalidateInvoiceCaches(_ context.Context, accountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[accountID]++
	prefix := "invoices:" + accountID + ":"
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// racingInvoices runs afterGet once, after a Get has read its row but
// before the caller sees it.
type racingInvoices struct {
	*memInvoices
	afterGet func()
}

func (r *racingInvoices) Get(ctx context.Context, accountID, invoiceID string) (*models.Invoice, error) {
	inv, err := r.memInvoices.Get(ctx, accountID, invoiceID)
	if hook := r.afterGet; hook != nil {
		r.afterGet = nil
		hook()
	}
	return inv, err
}
