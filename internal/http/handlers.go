package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"facture-backend/internal/domain"
	"facture-backend/internal/excel"
	"facture-backend/internal/repository"
	"facture-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// --- auth ---

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	account, token, err := h.svc.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusConflict, "email is already registered")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"account": account, "token": token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	account, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": account, "token": token})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.GetAccount(r.Context(), AccountID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

type profileRequest struct {
	FullName        *string `json:"full_name"`
	BusinessName    *string `json:"business_name"`
	BusinessAddress *string `json:"business_address"`
	BusinessPhone   *string `json:"business_phone"`
	TaxID           *string `json:"tax_id"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	account, err := h.svc.UpdateProfile(r.Context(), AccountID(r.Context()), repository.AccountProfileInput{
		FullName:        req.FullName,
		BusinessName:    req.BusinessName,
		BusinessAddress: req.BusinessAddress,
		BusinessPhone:   req.BusinessPhone,
		TaxID:           req.TaxID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// --- clients ---

type clientRequest struct {
	Name       string  `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	PostalCode *string `json:"postal_code"`
	Country    string  `json:"country"`
	TaxID      *string `json:"tax_id"`
	Notes      *string `json:"notes"`
}

func (req clientRequest) toInput() repository.ClientInput {
	return repository.ClientInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		TaxID:      req.TaxID,
		Notes:      req.Notes,
	}
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateClient(r.Context(), AccountID(r.Context()), req.toInput())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	client, err := h.svc.GetClient(r.Context(), AccountID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListClients(r.Context(), AccountID(r.Context()), query.Get("search"), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.UpdateClient(r.Context(), AccountID(r.Context()), id, req.toInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteClient(r.Context(), AccountID(r.Context()), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// --- products ---

type createProductRequest struct {
	Name              string          `json:"name"`
	Description       *string         `json:"description"`
	SKU               *string         `json:"sku"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	Unit              string          `json:"unit"`
	IsStocked         bool            `json:"is_stocked"`
	StockQuantity     int             `json:"stock_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateProduct(r.Context(), AccountID(r.Context()), repository.ProductCreateInput{
		Name:              req.Name,
		Description:       req.Description,
		SKU:               req.SKU,
		UnitPrice:         req.UnitPrice,
		TaxRate:           req.TaxRate,
		Unit:              req.Unit,
		IsStocked:         req.IsStocked,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.svc.GetProduct(r.Context(), AccountID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := repository.ProductListFilter{
		Search:       query.Get("search"),
		LowStockOnly: query.Get("low_stock") == "true",
		ActiveOnly:   query.Get("include_inactive") != "true",
		Limit:        limit,
		Offset:       offset,
	}
	items, err := h.svc.ListProducts(r.Context(), AccountID(r.Context()), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

type patchProductRequest struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	SKU               *string          `json:"sku"`
	UnitPrice         *decimal.Decimal `json:"unit_price"`
	TaxRate           *decimal.Decimal `json:"tax_rate"`
	Unit              *string          `json:"unit"`
	LowStockThreshold *int             `json:"low_stock_threshold"`
	IsActive          *bool            `json:"is_active"`
}

func (h *Handler) PatchProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req patchProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.PatchProduct(r.Context(), AccountID(r.Context()), id, repository.ProductPatchInput{
		Name:              req.Name,
		Description:       req.Description,
		SKU:               req.SKU,
		UnitPrice:         req.UnitPrice,
		TaxRate:           req.TaxRate,
		Unit:              req.Unit,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          req.IsActive,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeactivateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeactivateProduct(r.Context(), AccountID(r.Context()), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deactivated": true})
}

// --- stock ---

type adjustStockRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}
	product, err := h.svc.AdjustStock(r.Context(), AccountID(r.Context()), id, req.Delta, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) ListStockEntries(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := h.svc.ListStockEntries(r.Context(), AccountID(r.Context()), id, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": entries, "count": len(entries)})
}

// --- invoices ---

type invoiceItemRequest struct {
	ProductID       *int64           `json:"product_id"`
	Description     string           `json:"description"`
	Quantity        int              `json:"quantity"`
	Unit            *string          `json:"unit"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	TaxRate         *decimal.Decimal `json:"tax_rate"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

func (req invoiceItemRequest) toInput() repository.InvoiceItemInput {
	return repository.InvoiceItemInput{
		ProductID:       req.ProductID,
		Description:     req.Description,
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		UnitPrice:       req.UnitPrice,
		TaxRate:         req.TaxRate,
		DiscountPercent: req.DiscountPercent,
	}
}

type createInvoiceRequest struct {
	ClientID  int64                `json:"client_id"`
	IssueDate string               `json:"issue_date"`
	DueDate   string               `json:"due_date"`
	Notes     *string              `json:"notes"`
	Terms     *string              `json:"terms"`
	Items     []invoiceItemRequest `json:"items"`
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("issue_date: %v", err))
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("due_date: %v", err))
		return
	}

	input := repository.InvoiceCreateInput{
		ClientID:  req.ClientID,
		IssueDate: issueDate,
		DueDate:   dueDate,
		Notes:     req.Notes,
		Terms:     req.Terms,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, item.toInput())
	}

	created, err := h.svc.CreateInvoice(r.Context(), AccountID(r.Context()), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	invoice, err := h.svc.GetInvoice(r.Context(), AccountID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	clientID, err := parseOptionalInt64(query.Get("client_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, err := parseOptionalTime(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from: invalid time")
		return
	}
	to, err := parseOptionalTime(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to: invalid time")
		return
	}

	items, err := h.svc.ListInvoices(r.Context(), AccountID(r.Context()), repository.InvoiceListFilter{
		Status:   query.Get("status"),
		ClientID: clientID,
		From:     from,
		To:       to,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) AddInvoiceItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req invoiceItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	invoice, err := h.svc.AddInvoiceItem(r.Context(), AccountID(r.Context()), id, req.toInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (h *Handler) RemoveInvoiceItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	itemID, err := parseID(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	invoice, err := h.svc.RemoveInvoiceItem(r.Context(), AccountID(r.Context()), id, itemID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (h *Handler) IssueInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	invoice, err := h.svc.IssueInvoice(r.Context(), AccountID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (h *Handler) CancelInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	invoice, err := h.svc.CancelInvoice(r.Context(), AccountID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteInvoice(r.Context(), AccountID(r.Context()), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// --- payments ---

type paymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	PaidOn    string          `json:"paid_on"`
	Reference *string         `json:"reference"`
	Notes     *string         `json:"notes"`
}

func (h *Handler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	method, ok := domain.ParsePaymentMethod(req.Method)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown payment method %q", req.Method))
		return
	}
	paidOn := time.Now().UTC()
	if strings.TrimSpace(req.PaidOn) != "" {
		paidOn, err = parseDate(req.PaidOn)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("paid_on: %v", err))
			return
		}
	}

	invoice, payment, err := h.svc.ApplyPayment(r.Context(), AccountID(r.Context()), id, repository.PaymentInput{
		Amount:    req.Amount,
		Method:    method,
		PaidOn:    paidOn,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"invoice": invoice, "payment": payment})
}

type reversePaymentRequest struct {
	Notes *string `json:"notes"`
}

func (h *Handler) ReversePayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	paymentID, err := parseID(chi.URLParam(r, "paymentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req reversePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	invoice, err := h.svc.ReversePayment(r.Context(), AccountID(r.Context()), id, paymentID, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, err := parseOptionalTime(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from: invalid time")
		return
	}
	to, err := parseOptionalTime(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to: invalid time")
		return
	}
	items, err := h.svc.ListPayments(r.Context(), AccountID(r.Context()), repository.PaymentListFilter{
		From:   from,
		To:     to,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) ListInvoicePayments(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListInvoicePayments(r.Context(), AccountID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// --- quotes ---

type createQuoteRequest struct {
	ClientID     int64                `json:"client_id"`
	IssueDate    string               `json:"issue_date"`
	ValidityDate string               `json:"validity_date"`
	Notes        *string              `json:"notes"`
	Terms        *string              `json:"terms"`
	Items        []invoiceItemRequest `json:"items"`
}

func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("issue_date: %v", err))
		return
	}
	validityDate, err := parseDate(req.ValidityDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("validity_date: %v", err))
		return
	}

	input := repository.QuoteCreateInput{
		ClientID:     req.ClientID,
		IssueDate:    issueDate,
		ValidityDate: validityDate,
		Notes:        req.Notes,
		Terms:        req.Terms,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, item.toInput())
	}

	created, err := h.svc.CreateQuote(r.Context(), AccountID(r.Context()), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	quote, err := h.svc.GetQuote(r.Context(), AccountID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	clientID, err := parseOptionalInt64(query.Get("client_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if raw := query.Get("status"); raw != "" {
		if _, ok := domain.ParseQuoteStatus(raw); !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown quote status %q", raw))
			return
		}
	}

	items, err := h.svc.ListQuotes(r.Context(), AccountID(r.Context()), repository.QuoteListFilter{
		Status:   query.Get("status"),
		ClientID: clientID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

type updateQuoteRequest struct {
	ClientID     *int64  `json:"client_id"`
	IssueDate    *string `json:"issue_date"`
	ValidityDate *string `json:"validity_date"`
	Notes        *string `json:"notes"`
	Terms        *string `json:"terms"`
}

func (h *Handler) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req updateQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := repository.QuoteUpdateInput{
		ClientID: req.ClientID,
		Notes:    req.Notes,
		Terms:    req.Terms,
	}
	if req.IssueDate != nil {
		issueDate, err := parseDate(*req.IssueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("issue_date: %v", err))
			return
		}
		input.IssueDate = &issueDate
	}
	if req.ValidityDate != nil {
		validityDate, err := parseDate(*req.ValidityDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("validity_date: %v", err))
			return
		}
		input.ValidityDate = &validityDate
	}

	quote, err := h.svc.UpdateQuote(r.Context(), AccountID(r.Context()), id, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) AddQuoteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req invoiceItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	quote, err := h.svc.AddQuoteItem(r.Context(), AccountID(r.Context()), id, req.toInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) RemoveQuoteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	itemID, err := parseID(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	quote, err := h.svc.RemoveQuoteItem(r.Context(), AccountID(r.Context()), id, itemID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) SendQuote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	quote, err := h.svc.SendQuote(r.Context(), AccountID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) AcceptQuote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	quote, err := h.svc.AcceptQuote(r.Context(), AccountID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) RejectQuote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	quote, err := h.svc.RejectQuote(r.Context(), AccountID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteQuote(r.Context(), AccountID(r.Context()), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type convertQuoteRequest struct {
	DueDate *string `json:"due_date"`
}

func (h *Handler) ConvertQuote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req convertQuoteRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	var dueDate *time.Time
	if req.DueDate != nil {
		parsed, err := parseDate(*req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("due_date: %v", err))
			return
		}
		dueDate = &parsed
	}

	invoice, err := h.svc.ConvertQuote(r.Context(), AccountID(r.Context()), id, dueDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, invoice)
}

func (h *Handler) QuoteStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.QuoteStats(r.Context(), AccountID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- documents ---

func (h *Handler) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	invoice, err := h.svc.GenerateDocument(r.Context(), AccountID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, invoice)
}

func (h *Handler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reader, name, err := h.svc.OpenDocument(r.Context(), AccountID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = io.Copy(w, reader)
}

// --- dashboard ---

func (h *Handler) DashboardOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.DashboardOverview(r.Context(), AccountID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *Handler) MonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	months, err := parseOptionalInt(r.URL.Query().Get("months"), 12)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.MonthlyRevenue(r.Context(), AccountID(r.Context()), months)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// --- imports ---

func (h *Handler) ImportClientsExcel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	rows, err := excel.ParseClientRows(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.ImportClients(r.Context(), AccountID(r.Context()), rows)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"file_name":  header.Filename,
		"total_rows": len(rows),
		"result":     result,
	})
}

func (h *Handler) ImportProductsExcel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	rows, err := excel.ParseProductRows(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.ImportProducts(r.Context(), AccountID(r.Context()), rows)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"file_name":  header.Filename,
		"total_rows": len(rows),
		"result":     result,
	})
}
