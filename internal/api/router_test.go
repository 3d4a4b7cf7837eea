package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"walletledger/internal/api/handler"
	"walletledger/internal/util"
)

func newTestRouter() http.Handler {
	logger := util.DiscardLogger()
	return NewRouter(
		handler.NewWalletHandler(nil, nil, logger),
		handler.NewTransferHandler(nil, logger),
		handler.NewLedgerHandler(nil, logger),
		logger,
	)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouterRejectsInvalidIDsBeforeCallingServices(t *testing.T) {
	router := newTestRouter()
	for _, path := range []string{"/wallets/0", "/wallets/x/transactions", "/transfers/-1", "/ledger/wallets/abc/verify"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallets/1/balance", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
