package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"facture-backend/internal/auth"
	"facture-backend/internal/domain"
	"facture-backend/internal/render"
	"facture-backend/internal/repository"

	"github.com/rs/zerolog"
)

// retryAttempts bounds how often a transaction is retried after the
// database reports a serialization or lock conflict.
const retryAttempts = 3

var nowFunc = time.Now

type Service struct {
	repo             *repository.Repository
	renderer         render.Renderer
	store            DocumentStore
	log              zerolog.Logger
	jwtSecret        string
	allowOverpayment bool
}

type Options struct {
	Renderer         render.Renderer
	Store            DocumentStore
	Logger           zerolog.Logger
	JWTSecret        string
	AllowOverpayment bool
}

func New(repo *repository.Repository, opts Options) *Service {
	return &Service{
		repo:             repo,
		renderer:         opts.Renderer,
		store:            opts.Store,
		log:              opts.Logger,
		jwtSecret:        opts.JWTSecret,
		allowOverpayment: opts.AllowOverpayment,
	}
}

// withRetry re-runs fn while the repository reports a concurrent
// modification. Every attempt re-reads current state inside its own
// transaction, so a retry is always based on fresh rows.
func withRetry[T any](ctx context.Context, log zerolog.Logger, label string, fn func() (T, error)) (T, error) {
	var result T
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		result, err = fn()
		if !errors.Is(err, domain.ErrConcurrentModification) {
			return result, err
		}
		log.Warn().Str("op", label).Int("attempt", attempt).Msg("transaction conflict, retrying")
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
		}
	}
	return result, err
}

// --- accounts ---

func (s *Service) Register(ctx context.Context, email, password, fullName string) (domain.Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.Account{}, "", fmt.Errorf("a valid email is required")
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return domain.Account{}, "", fmt.Errorf("full_name is required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.Account{}, "", err
	}

	account, err := s.repo.CreateAccount(ctx, repository.AccountCreateInput{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
	})
	if err != nil {
		return domain.Account{}, "", err
	}

	token, err := auth.GenerateToken(s.jwtSecret, account.ID, account.Email)
	if err != nil {
		return domain.Account{}, "", err
	}
	s.log.Info().Int64("account_id", account.ID).Msg("account registered")
	return account, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (domain.Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	account, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Account{}, "", fmt.Errorf("invalid credentials")
		}
		return domain.Account{}, "", err
	}
	if !auth.CheckPassword(account.PasswordHash, password) {
		return domain.Account{}, "", fmt.Errorf("invalid credentials")
	}

	token, err := auth.GenerateToken(s.jwtSecret, account.ID, account.Email)
	if err != nil {
		return domain.Account{}, "", err
	}
	return *account, token, nil
}

func (s *Service) GetAccount(ctx context.Context, accountID int64) (*domain.Account, error) {
	return s.repo.GetAccountByID(ctx, accountID)
}

func (s *Service) UpdateProfile(ctx context.Context, accountID int64, input repository.AccountProfileInput) (*domain.Account, error) {
	return s.repo.UpdateAccountProfile(ctx, accountID, input)
}

// --- clients ---

func (s *Service) CreateClient(ctx context.Context, accountID int64, input repository.ClientInput) (domain.Client, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return domain.Client{}, fmt.Errorf("name is required")
	}
	return s.repo.CreateClient(ctx, accountID, input)
}

func (s *Service) GetClient(ctx context.Context, accountID, clientID int64) (*domain.Client, error) {
	return s.repo.GetClient(ctx, accountID, clientID)
}

func (s *Service) ListClients(ctx context.Context, accountID int64, search string, limit, offset int) ([]domain.Client, error) {
	return s.repo.ListClients(ctx, accountID, repository.ClientListFilter{
		Search: strings.TrimSpace(search),
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Service) UpdateClient(ctx context.Context, accountID, clientID int64, input repository.ClientInput) (*domain.Client, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	return s.repo.UpdateClient(ctx, accountID, clientID, input)
}

func (s *Service) DeleteClient(ctx context.Context, accountID, clientID int64) error {
	return s.repo.DeleteClient(ctx, accountID, clientID)
}

// --- products and stock ---

func (s *Service) CreateProduct(ctx context.Context, accountID int64, input repository.ProductCreateInput) (domain.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return domain.Product{}, fmt.Errorf("name is required")
	}
	if input.UnitPrice.IsNegative() {
		return domain.Product{}, fmt.Errorf("unit_price must not be negative")
	}
	if input.TaxRate.IsNegative() {
		return domain.Product{}, domain.ErrInvalidRate
	}
	if input.StockQuantity < 0 {
		return domain.Product{}, domain.ErrInvalidQuantity
	}
	if input.Unit == "" {
		input.Unit = "unit"
	}
	return s.repo.CreateProduct(ctx, accountID, input)
}

func (s *Service) GetProduct(ctx context.Context, accountID, productID int64) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, accountID, productID)
}

func (s *Service) ListProducts(ctx context.Context, accountID int64, filter repository.ProductListFilter) ([]domain.Product, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.ListProducts(ctx, accountID, filter)
}

func (s *Service) PatchProduct(ctx context.Context, accountID, productID int64, input repository.ProductPatchInput) (*domain.Product, error) {
	if input.UnitPrice != nil && input.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("unit_price must not be negative")
	}
	if input.TaxRate != nil && input.TaxRate.IsNegative() {
		return nil, domain.ErrInvalidRate
	}
	return s.repo.PatchProduct(ctx, accountID, productID, input)
}

func (s *Service) DeactivateProduct(ctx context.Context, accountID, productID int64) error {
	return s.repo.DeactivateProduct(ctx, accountID, productID)
}

func (s *Service) AdjustStock(ctx context.Context, accountID, productID int64, delta int, reason string) (*domain.Product, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrMissingReason
	}
	product, err := withRetry(ctx, s.log, "adjust_stock", func() (*domain.Product, error) {
		return s.repo.AdjustStock(ctx, accountID, productID, delta, reason)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Int64("account_id", accountID).
		Int64("product_id", productID).
		Int("delta", delta).
		Int("stock", product.StockQuantity).
		Msg("stock adjusted")
	return product, nil
}

func (s *Service) ListStockEntries(ctx context.Context, accountID, productID int64, limit, offset int) ([]domain.StockEntry, error) {
	return s.repo.ListStockEntries(ctx, accountID, productID, limit, offset)
}

// --- invoices ---

func (s *Service) CreateInvoice(ctx context.Context, accountID int64, input repository.InvoiceCreateInput) (domain.Invoice, error) {
	if input.DueDate.Before(input.IssueDate) {
		return domain.Invoice{}, fmt.Errorf("due_date must not precede issue_date")
	}
	invoice, err := withRetry(ctx, s.log, "create_invoice", func() (domain.Invoice, error) {
		return s.repo.CreateInvoice(ctx, accountID, input)
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	s.log.Info().
		Int64("account_id", accountID).
		Int64("invoice_id", invoice.ID).
		Str("number", invoice.InvoiceNumber).
		Msg("invoice created")
	return invoice, nil
}

func (s *Service) GetInvoice(ctx context.Context, accountID, invoiceID int64) (*domain.Invoice, error) {
	return s.repo.GetInvoice(ctx, accountID, invoiceID)
}

func (s *Service) ListInvoices(ctx context.Context, accountID int64, filter repository.InvoiceListFilter) ([]domain.Invoice, error) {
	return s.repo.ListInvoices(ctx, accountID, filter)
}

func (s *Service) AddInvoiceItem(ctx context.Context, accountID, invoiceID int64, input repository.InvoiceItemInput) (domain.Invoice, error) {
	return withRetry(ctx, s.log, "add_invoice_item", func() (domain.Invoice, error) {
		return s.repo.AddInvoiceItem(ctx, accountID, invoiceID, input)
	})
}

func (s *Service) RemoveInvoiceItem(ctx context.Context, accountID, invoiceID, itemID int64) (domain.Invoice, error) {
	return withRetry(ctx, s.log, "remove_invoice_item", func() (domain.Invoice, error) {
		return s.repo.RemoveInvoiceItem(ctx, accountID, invoiceID, itemID)
	})
}

func (s *Service) IssueInvoice(ctx context.Context, accountID, invoiceID int64) (domain.Invoice, error) {
	invoice, err := withRetry(ctx, s.log, "issue_invoice", func() (domain.Invoice, error) {
		return s.repo.IssueInvoice(ctx, accountID, invoiceID)
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	s.log.Info().
		Int64("account_id", accountID).
		Str("number", invoice.InvoiceNumber).
		Msg("invoice issued")
	return invoice, nil
}

func (s *Service) CancelInvoice(ctx context.Context, accountID, invoiceID int64) (domain.Invoice, error) {
	invoice, err := withRetry(ctx, s.log, "cancel_invoice", func() (domain.Invoice, error) {
		return s.repo.CancelInvoice(ctx, accountID, invoiceID)
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	s.log.Info().
		Int64("account_id", accountID).
		Str("number", invoice.InvoiceNumber).
		Msg("invoice cancelled")
	return invoice, nil
}

func (s *Service) DeleteInvoice(ctx context.Context, accountID, invoiceID int64) error {
	_, err := withRetry(ctx, s.log, "delete_invoice", func() (struct{}, error) {
		return struct{}{}, s.repo.DeleteInvoice(ctx, accountID, invoiceID)
	})
	return err
}

// --- payments ---

func (s *Service) ApplyPayment(ctx context.Context, accountID, invoiceID int64, input repository.PaymentInput) (domain.Invoice, domain.Payment, error) {
	type applied struct {
		invoice domain.Invoice
		payment domain.Payment
	}
	result, err := withRetry(ctx, s.log, "apply_payment", func() (applied, error) {
		invoice, payment, err := s.repo.ApplyPayment(ctx, accountID, invoiceID, input, s.allowOverpayment)
		return applied{invoice, payment}, err
	})
	if err != nil {
		return domain.Invoice{}, domain.Payment{}, err
	}
	s.log.Info().
		Int64("account_id", accountID).
		Int64("invoice_id", invoiceID).
		Str("amount", input.Amount.StringFixed(2)).
		Str("status", string(result.invoice.Status)).
		Msg("payment applied")
	return result.invoice, result.payment, nil
}

func (s *Service) ReversePayment(ctx context.Context, accountID, invoiceID, paymentID int64, notes *string) (domain.Invoice, error) {
	invoice, err := withRetry(ctx, s.log, "reverse_payment", func() (domain.Invoice, error) {
		return s.repo.ReversePayment(ctx, accountID, invoiceID, paymentID, notes)
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	s.log.Info().
		Int64("account_id", accountID).
		Int64("invoice_id", invoiceID).
		Int64("payment_id", paymentID).
		Msg("payment reversed")
	return invoice, nil
}

func (s *Service) ListPayments(ctx context.Context, accountID int64, filter repository.PaymentListFilter) ([]domain.Payment, error) {
	return s.repo.ListPayments(ctx, accountID, filter)
}

func (s *Service) ListInvoicePayments(ctx context.Context, accountID, invoiceID int64) ([]domain.Payment, error) {
	return s.repo.ListInvoicePayments(ctx, accountID, invoiceID)
}

// --- quotes ---

func (s *Service) CreateQuote(ctx context.Context, accountID int64, input repository.QuoteCreateInput) (domain.Quote, error) {
	if input.ValidityDate.Before(input.IssueDate) {
		return domain.Quote{}, fmt.Errorf("validity_date must not precede issue_date")
	}
	quote, err := withRetry(ctx, s.log, "create_quote", func() (domain.Quote, error) {
		return s.repo.CreateQuote(ctx, accountID, input)
	})
	if err != nil {
		return domain.Quote{}, err
	}
	s.log.Info().
		Int64("account_id", accountID).
		Int64("quote_id", quote.ID).
		Str("number", quote.QuoteNumber).
		Msg("quote created")
	return quote, nil
}

func (s *Service) GetQuote(ctx context.Context, accountID, quoteID int64) (*domain.Quote, error) {
	return s.repo.GetQuote(ctx, accountID, quoteID)
}

func (s *Service) ListQuotes(ctx context.Context, accountID int64, filter repository.QuoteListFilter) ([]domain.Quote, error) {
	return s.repo.ListQuotes(ctx, accountID, filter)
}

func (s *Service) UpdateQuote(ctx context.Context, accountID, quoteID int64, input repository.QuoteUpdateInput) (domain.Quote, error) {
	return withRetry(ctx, s.log, "update_quote", func() (domain.Quote, error) {
		return s.repo.UpdateQuote(ctx, accountID, quoteID, input)
	})
}

func (s *Service) AddQuoteItem(ctx context.Context, accountID, quoteID int64, input repository.InvoiceItemInput) (domain.Quote, error) {
	return withRetry(ctx, s.log, "add_quote_item", func() (domain.Quote, error) {
		return s.repo.AddQuoteItem(ctx, accountID, quoteID, input)
	})
}

func (s *Service) RemoveQuoteItem(ctx context.Context, accountID, quoteID, itemID int64) (domain.Quote, error) {
	return withRetry(ctx, s.log, "remove_quote_item", func() (domain.Quote, error) {
		return s.repo.RemoveQuoteItem(ctx, accountID, quoteID, itemID)
	})
}

func (s *Service) SendQuote(ctx context.Context, accountID, quoteID int64) (domain.Quote, error) {
	quote, err := withRetry(ctx, s.log, "send_quote", func() (domain.Quote, error) {
		return s.repo.SendQuote(ctx, accountID, quoteID)
	})
	if err != nil {
		return domain.Quote{}, err
	}
	s.log.Info().Int64("account_id", accountID).Int64("quote_id", quoteID).Msg("quote sent")
	return quote, nil
}

func (s *Service) AcceptQuote(ctx context.Context, accountID, quoteID int64) (domain.Quote, error) {
	quote, err := withRetry(ctx, s.log, "accept_quote", func() (domain.Quote, error) {
		return s.repo.AcceptQuote(ctx, accountID, quoteID)
	})
	if err != nil {
		return domain.Quote{}, err
	}
	s.log.Info().Int64("account_id", accountID).Int64("quote_id", quoteID).Msg("quote accepted")
	return quote, nil
}

func (s *Service) RejectQuote(ctx context.Context, accountID, quoteID int64) (domain.Quote, error) {
	quote, err := withRetry(ctx, s.log, "reject_quote", func() (domain.Quote, error) {
		return s.repo.RejectQuote(ctx, accountID, quoteID)
	})
	if err != nil {
		return domain.Quote{}, err
	}
	s.log.Info().Int64("account_id", accountID).Int64("quote_id", quoteID).Msg("quote rejected")
	return quote, nil
}

func (s *Service) DeleteQuote(ctx context.Context, accountID, quoteID int64) error {
	return s.repo.DeleteQuote(ctx, accountID, quoteID)
}

// ConvertQuote issues a draft invoice from an accepted quote. The invoice is
// dated today; the due date defaults to thirty days out when not given.
func (s *Service) ConvertQuote(ctx context.Context, accountID, quoteID int64, dueDate *time.Time) (domain.Invoice, error) {
	issueDate := nowFunc().UTC().Truncate(24 * time.Hour)
	due := issueDate.AddDate(0, 0, 30)
	if dueDate != nil {
		due = *dueDate
	}
	if due.Before(issueDate) {
		return domain.Invoice{}, fmt.Errorf("due_date must not precede issue_date")
	}

	invoice, err := withRetry(ctx, s.log, "convert_quote", func() (domain.Invoice, error) {
		return s.repo.ConvertQuote(ctx, accountID, quoteID, issueDate, due)
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	s.log.Info().
		Int64("account_id", accountID).
		Int64("quote_id", quoteID).
		Int64("invoice_id", invoice.ID).
		Str("number", invoice.InvoiceNumber).
		Msg("quote converted to invoice")
	return invoice, nil
}

func (s *Service) QuoteStats(ctx context.Context, accountID int64) (*domain.QuoteStats, error) {
	return s.repo.QuoteStats(ctx, accountID)
}

// --- dashboard ---

func (s *Service) DashboardOverview(ctx context.Context, accountID int64) (*domain.DashboardOverview, error) {
	return s.repo.DashboardOverview(ctx, accountID, time.Now())
}

func (s *Service) MonthlyRevenue(ctx context.Context, accountID int64, months int) ([]domain.MonthlyRevenue, error) {
	return s.repo.MonthlyRevenue(ctx, accountID, months)
}

// --- imports ---

func (s *Service) ImportClients(ctx context.Context, accountID int64, rows []domain.ClientImportRow) (domain.ImportResult, error) {
	result := domain.ImportResult{}
	for index, row := range rows {
		_, err := s.CreateClient(ctx, accountID, repository.ClientInput{
			Name:       row.Name,
			Email:      row.Email,
			Phone:      row.Phone,
			Address:    row.Address,
			City:       row.City,
			PostalCode: row.PostalCode,
			Country:    row.Country,
			TaxID:      row.TaxID,
		})
		if err != nil {
			result.RowErrors = append(result.RowErrors, fmt.Sprintf("row %d: %v", index+2, err))
			continue
		}
		result.ClientsCreated++
	}
	s.log.Info().
		Int64("account_id", accountID).
		Int("created", result.ClientsCreated).
		Int("errors", len(result.RowErrors)).
		Msg("clients imported")
	return result, nil
}

func (s *Service) ImportProducts(ctx context.Context, accountID int64, rows []domain.ProductImportRow) (domain.ImportResult, error) {
	result := domain.ImportResult{}
	for index, row := range rows {
		_, err := s.CreateProduct(ctx, accountID, repository.ProductCreateInput{
			Name:          row.Name,
			SKU:           row.SKU,
			UnitPrice:     row.UnitPrice,
			TaxRate:       row.TaxRate,
			Unit:          row.Unit,
			IsStocked:     row.IsStocked,
			StockQuantity: row.StockQuantity,
		})
		if err != nil {
			result.RowErrors = append(result.RowErrors, fmt.Sprintf("row %d: %v", index+2, err))
			continue
		}
		result.ProductsCreated++
	}
	s.log.Info().
		Int64("account_id", accountID).
		Int("created", result.ProductsCreated).
		Int("errors", len(result.RowErrors)).
		Msg("products imported")
	return result, nil
}
