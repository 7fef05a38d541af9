package handlers

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"invoice-backend/internal/logger"
	"invoice-backend/internal/models"
	"invoice-backend/internal/render"
	"invoice-backend/internal/services"
	"invoice-backend/internal/timeutil"
	"invoice-backend/internal/validation"
	"invoice-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type InvoiceHandler struct {
	Service  *services.InvoiceService
	Accounts *services.AccountService
}

func NewInvoiceHandler(s *services.InvoiceService, accounts *services.AccountService) *InvoiceHandler {
	return &InvoiceHandler{Service: s, Accounts: accounts}
}

// CreateInvoice handles POST /invoices
func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	owner, ok := accountID(w, r)
	if !ok {
		return
	}

	payload, ok := readObject(w, r)
	if !ok {
		return
	}

	inv, err := h.Service.Create(r.Context(), owner, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, inv)
}

// ListInvoices handles GET /invoices?q=&status=&from=&to=
func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	owner, ok := accountID(w, r)
	if !ok {
		return
	}

	filter, errs := parseFilter(r)
	if errs.HasErrors() {
		writeValidation(w, errs)
		return
	}

	invoices, err := h.Service.List(r.Context(), owner, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, invoices)
}

func parseFilter(r *http.Request) (models.InvoiceFilter, validation.FieldErrors) {
	q := r.URL.Query()
	errs := validation.FieldErrors{}
	filter := models.InvoiceFilter{Search: strings.TrimSpace(q.Get("q"))}

	if s := strings.TrimSpace(q.Get("status")); s != "" {
		status := models.InvoiceStatus(strings.ToUpper(s))
		if status.Valid() {
			filter.Status = status
		} else {
			errs.Add("status", "Invalid status")
		}
	}
	if s := q.Get("from"); s != "" {
		if t, err := timeutil.ParseDate(s); err == nil {
			filter.From = &t
		} else {
			errs.Add("from", "Invalid date")
		}
	}
	if s := q.Get("to"); s != "" {
		if t, err := timeutil.ParseDate(s); err == nil {
			end := timeutil.EndOfDay(t)
			filter.To = &end
		} else {
			errs.Add("to", "Invalid date")
		}
	}
	return filter, errs
}

// NextInvoiceNumber handles GET /invoices/next-number
func (h *InvoiceHandler) NextInvoiceNumber(w http.ResponseWriter, r *http.Request) {
	owner, ok := accountID(w, r)
	if !ok {
		return
	}

	next, err := h.Service.NextInvoiceNumber(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, models.NextInvoiceNumberResponse{InvoiceNo: next})
}

// GetInvoice handles GET /invoices/{id}
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	owner, ok := accountID(w, r)
	if !ok {
		return
	}

	inv, err := h.Service.Get(r.Context(), owner, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, inv)
}

// UpdateInvoice handles PATCH /invoices/{id}. The body is a full draft.
func (h *InvoiceHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	owner, ok := accountID(w, r)
	if !ok {
		return
	}

	payload, ok := readObject(w, r)
	if !ok {
		return
	}

	inv, err := h.Service.Update(r.Context(), owner, mux.Vars(r)["id"], payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, inv)
}

// DeleteInvoice handles DELETE /invoices/{id}
func (h *InvoiceHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	owner, ok := accountID(w, r)
	if !ok {
		return
	}

	inv, err := h.Service.Delete(r.Context(), owner, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, models.DeletedInvoice{
		Message: "Invoice deleted successfully",
		Invoice: inv,
	})
}

// DownloadPDF handles GET /invoices/{id}/pdf
func (h *InvoiceHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.document(w, r)
	if !ok {
		return
	}

	data, err := render.PDF(doc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName(doc.InvoiceNo)+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Preview handles GET /invoices/{id}/preview
func (h *InvoiceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.document(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.HTML(&buf, doc); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *InvoiceHandler) document(w http.ResponseWriter, r *http.Request) (*render.Document, bool) {
	owner, ok := accountID(w, r)
	if !ok {
		return nil, false
	}

	inv, err := h.Service.Get(r.Context(), owner, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return render.NewDocument(inv, h.account(r.Context(), owner)), true
}

// account is best effort: a document without business details still renders
func (h *InvoiceHandler) account(ctx context.Context, id string) *models.Account {
	if h.Accounts == nil {
		return nil
	}
	account, err := h.Accounts.Get(ctx, id)
	if err != nil {
		log := logger.WithAccountID(id)
		log.Warn().Err(err).Msg("account lookup for invoice document failed")
		return nil
	}
	return account
}

func fileName(invoiceNo string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, invoiceNo)
}
