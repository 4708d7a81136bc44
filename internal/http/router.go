package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func NewRouter(handler *Handler, log zerolog.Logger, jwtSecret string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(Timeout)
	r.Use(CORS)

	r.Get("/healthz", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", handler.Register)
		r.Post("/auth/login", handler.Login)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(jwtSecret))

			r.Get("/me", handler.GetProfile)
			r.Put("/me", handler.UpdateProfile)

			r.Get("/clients", handler.ListClients)
			r.Post("/clients", handler.CreateClient)
			r.Get("/clients/{id}", handler.GetClient)
			r.Put("/clients/{id}", handler.UpdateClient)
			r.Delete("/clients/{id}", handler.DeleteClient)

			r.Get("/products", handler.ListProducts)
			r.Post("/products", handler.CreateProduct)
			r.Get("/products/{id}", handler.GetProduct)
			r.Patch("/products/{id}", handler.PatchProduct)
			r.Delete("/products/{id}", handler.DeactivateProduct)
			r.Post("/products/{id}/stock", handler.AdjustStock)
			r.Get("/products/{id}/stock-entries", handler.ListStockEntries)

			r.Get("/invoices", handler.ListInvoices)
			r.Post("/invoices", handler.CreateInvoice)
			r.Get("/invoices/{id}", handler.GetInvoice)
			r.Delete("/invoices/{id}", handler.DeleteInvoice)
			r.Post("/invoices/{id}/items", handler.AddInvoiceItem)
			r.Delete("/invoices/{id}/items/{itemID}", handler.RemoveInvoiceItem)
			r.Post("/invoices/{id}/issue", handler.IssueInvoice)
			r.Post("/invoices/{id}/cancel", handler.CancelInvoice)
			r.Post("/invoices/{id}/payments", handler.ApplyPayment)
			r.Get("/invoices/{id}/payments", handler.ListInvoicePayments)
			r.Post("/invoices/{id}/payments/{paymentID}/reverse", handler.ReversePayment)
			r.Post("/invoices/{id}/document", handler.GenerateDocument)
			r.Get("/invoices/{id}/document", handler.DownloadDocument)

			r.Get("/quotes", handler.ListQuotes)
			r.Post("/quotes", handler.CreateQuote)
			r.Get("/quotes/stats", handler.QuoteStats)
			r.Get("/quotes/{id}", handler.GetQuote)
			r.Patch("/quotes/{id}", handler.UpdateQuote)
			r.Delete("/quotes/{id}", handler.DeleteQuote)
			r.Post("/quotes/{id}/items", handler.AddQuoteItem)
			r.Delete("/quotes/{id}/items/{itemID}", handler.RemoveQuoteItem)
			r.Post("/quotes/{id}/send", handler.SendQuote)
			r.Post("/quotes/{id}/accept", handler.AcceptQuote)
			r.Post("/quotes/{id}/reject", handler.RejectQuote)
			r.Post("/quotes/{id}/convert", handler.ConvertQuote)

			r.Get("/payments", handler.ListPayments)

			r.Get("/dashboard", handler.DashboardOverview)
			r.Get("/dashboard/revenue", handler.MonthlyRevenue)

			r.Post("/imports/clients", handler.ImportClientsExcel)
			r.Post("/imports/products", handler.ImportProductsExcel)
		})
	})

	return r
}
