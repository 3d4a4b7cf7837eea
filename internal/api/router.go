// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"walletledger/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(walletHandler *handler.WalletHandler, transferHandler *handler.TransferHandler, ledgerHandler *handler.LedgerHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)                       // Add a request ID to the context
	r.Use(middleware.RealIP)                          // Use the real IP address
	r.Use(requestLogger(logger))                      // Log HTTP requests
	r.Use(middleware.Recoverer)                       // Recover from panics and return 500
	r.Use(middleware.Timeout(handler.DefaultTimeout)) // Set a default timeout for requests

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Wallet API routes
	r.Route("/wallets", func(r chi.Router) {
		r.Post("/", walletHandler.CreateWallet)
		r.Route("/{walletID}", func(r chi.Router) {
			r.Get("/", walletHandler.GetWallet)
			r.Delete("/", walletHandler.DeleteWallet)
			r.Post("/fund", walletHandler.Fund)
			r.Post("/withdraw", walletHandler.Withdraw)
			r.Get("/transactions", walletHandler.GetTransactionHistory)
			r.Get("/transfers", walletHandler.GetWalletTransfers)
		})
	})

	// Transfer is a separate top-level endpoint as it involves two wallets
	r.Route("/transfers", func(r chi.Router) {
		r.Post("/", transferHandler.CreateTransfer)
		r.Get("/{transferID}", transferHandler.GetTransfer)
	})

	r.Get("/transactions/{reference}", walletHandler.GetTransactionByReference)

	// Read-only integrity checks
	r.Route("/ledger", func(r chi.Router) {
		r.Get("/wallets/{walletID}/verify", ledgerHandler.VerifyWallet)
		r.Get("/wallets/{walletID}/audit-trail", ledgerHandler.AuditTrail)
		r.Get("/transfers/{transferID}/verify", ledgerHandler.VerifyTransfer)
	})

	return r
}

// requestLogger logs each request through the application's slog logger.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
