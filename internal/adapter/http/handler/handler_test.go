package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pos-fiscal-ledger/internal/adapter/http/middleware"
	"pos-fiscal-ledger/internal/core/domain"
	"pos-fiscal-ledger/internal/core/ports"
	"pos-fiscal-ledger/internal/core/ports/mocks"
	"pos-fiscal-ledger/internal/service"
	"pos-fiscal-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	testTenant   = uuid.MustParse("0d6f2b3e-52b4-4f0c-9a8e-1e2f3a4b5c6d")
	testEstab    = uuid.MustParse("5b2d3c86-0e43-4d3f-9f0f-7f7f3a0f3b11")
	testRegister = uuid.MustParse("8a3a4a0e-7c55-4c62-bf52-3c0a2b3e0f20")
)

// newContext builds a request context as JWTAuth would leave it.
func newContext(method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxTenantID, testTenant)
	c.Set(middleware.CtxOperatorID, "cashier-1")
	c.Set(middleware.CtxRole, ports.RoleCashier)
	return c, w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "body: %s", w.Body.String())
	return data
}

func decodeCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error_code"].(string)
	return code
}

func sampleTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:              uuid.New(),
		TenantID:        testTenant,
		Number:          "20250120-E01-R01-000001",
		EstablishmentID: testEstab,
		RegisterID:      testRegister,
		SellerID:        "cashier-1",
		SoldAt:          time.Date(2025, 1, 20, 9, 30, 0, 123e6, time.UTC),
		Totals: domain.Totals{
			HT:  decimal.RequireFromString("20.83"),
			TVA: decimal.RequireFromString("4.17"),
			TTC: decimal.RequireFromString("25"),
		},
		Lines: []domain.LineItem{{
			Position:       1,
			ProductID:      "SKU-1",
			Quantity:       decimal.NewFromInt(2),
			UnitPrice:      decimal.RequireFromString("12.5"),
			TaxRate:        decimal.NewFromInt(20),
			DiscountAmount: decimal.Zero,
			TotalHT:        decimal.RequireFromString("20.83"),
			TotalTVA:       decimal.RequireFromString("4.17"),
			TotalTTC:       decimal.NewFromInt(25),
		}},
		Payments:     []domain.Payment{{Method: domain.PaymentCard, Amount: decimal.NewFromInt(25)}},
		PreviousHash: "FIRST_TICKET",
		CurrentHash:  "abc123",
		Signature:    domain.Placeholder("abc123"),
		Status:       domain.TicketStatusCompleted,
	}
}

func saleBody() map[string]any {
	return map[string]any{
		"establishment_id": testEstab.String(),
		"register_id":      testRegister.String(),
		"line_items": []map[string]any{
			{"product_id": "SKU-1", "quantity": 2, "unit_price": "12.50", "tax_rate": 20},
		},
		"payments": []map[string]any{{"method": "card", "amount": "25.00"}},
	}
}

// --- Ticket Handler Tests ---

func TestRecordSale_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewTicketHandler(ledger)

	ledger.EXPECT().RecordSale(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.SaleRequest) (*domain.Ticket, error) {
			assert.Equal(t, testTenant, req.TenantID)
			assert.Equal(t, testEstab, req.EstablishmentID)
			assert.Equal(t, testRegister, req.RegisterID)
			assert.Equal(t, "cashier-1", req.SellerID, "seller defaults to the operator")
			assert.Equal(t, "retry-42", req.IdempotencyKey)
			require.Len(t, req.Lines, 1)
			assert.True(t, req.Lines[0].UnitPrice.Equal(decimal.RequireFromString("12.5")))
			require.Len(t, req.Payments, 1)
			assert.Equal(t, domain.PaymentCard, req.Payments[0].Method)
			return sampleTicket(), nil
		})

	c, w := newContext(http.MethodPost, "/api/v1/tickets", saleBody())
	c.Request.Header.Set(HeaderIdempotencyKey, "retry-42")
	h.RecordSale(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "20250120-E01-R01-000001", data["ticket_number"])
	assert.Equal(t, "2025-01-20T09:30:00.123Z", data["sale_timestamp"])
	assert.Equal(t, "abc123", data["hash"])
	totals := data["totals"].(map[string]any)
	assert.Equal(t, "25.00", totals["total_ttc"])
	sig := data["signature"].(map[string]any)
	assert.Equal(t, "PLACEHOLDER", sig["kind"])
}

func TestRecordSale_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewTicketHandler(mocks.NewMockLedgerService(ctrl))

	body := saleBody()
	body["line_items"] = []map[string]any{}
	c, w := newContext(http.MethodPost, "/api/v1/tickets", body)
	h.RecordSale(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", decodeCode(t, w))
}

func TestRecordSale_PreconditionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewTicketHandler(ledger)

	ledger.EXPECT().RecordSale(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrDayAlreadyClosed())

	c, w := newContext(http.MethodPost, "/api/v1/tickets", saleBody())
	h.RecordSale(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PRE_003", decodeCode(t, w))
}

func TestRecordSale_PersistenceErrorIsOpaque(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewTicketHandler(ledger)

	ledger.EXPECT().RecordSale(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrPersistence(errors.New("pq: connection reset")))

	c, w := newContext(http.MethodPost, "/api/v1/tickets", saleBody())
	h.RecordSale(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "SYS_001", decodeCode(t, w))
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestRecordSale_NoOperator(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewTicketHandler(mocks.NewMockLedgerService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/tickets", nil)
	h.RecordSale(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetTicket(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewTicketHandler(ledger)

	ledger.EXPECT().GetTicket(gomock.Any(), testTenant, "20250120-E01-R01-000001").Return(sampleTicket(), nil)
	ledger.EXPECT().GetTicket(gomock.Any(), testTenant, "missing").Return(nil, apperror.ErrTicketNotFound())

	c, w := newContext(http.MethodGet, "/api/v1/tickets/20250120-E01-R01-000001", nil)
	c.Params = gin.Params{{Key: "number", Value: "20250120-E01-R01-000001"}}
	h.GetTicket(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decodeData(t, w)["status"])

	c, w = newContext(http.MethodGet, "/api/v1/tickets/missing", nil)
	c.Params = gin.Params{{Key: "number", Value: "missing"}}
	h.GetTicket(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRE_005", decodeCode(t, w))
}

func TestCancelTicket(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewTicketHandler(ledger)

	cancelled := sampleTicket()
	at := time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC)
	reason := "wrong item"
	cancelled.Status = domain.TicketStatusCancelled
	cancelled.CancelledAt = &at
	cancelled.CancelReason = &reason

	ledger.EXPECT().CancelTicket(gomock.Any(), ports.CancelRequest{
		TenantID:     testTenant,
		TicketNumber: cancelled.Number,
		Reason:       "wrong item",
		Actor:        "cashier-1",
		Origin:       "192.0.2.1",
	}).Return(cancelled, nil)

	c, w := newContext(http.MethodPost, "/api/v1/tickets/x/cancel", map[string]string{"reason": "  wrong item "})
	c.Params = gin.Params{{Key: "number", Value: cancelled.Number}}
	h.CancelTicket(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "cancelled", data["status"])
	assert.Equal(t, "2025-01-20T10:00:00.000Z", data["cancelled_at"])
	assert.Equal(t, "abc123", data["hash"], "cancellation leaves the digest untouched")
}

func TestCancelTicket_ReasonRequired(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewTicketHandler(mocks.NewMockLedgerService(ctrl))

	c, w := newContext(http.MethodPost, "/api/v1/tickets/x/cancel", map[string]string{})
	c.Params = gin.Params{{Key: "number", Value: "x"}}
	h.CancelTicket(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Closure Handler Tests ---

func sampleClosure() *domain.Closure {
	return &domain.Closure{
		ID:              uuid.New(),
		TenantID:        testTenant,
		EstablishmentID: testEstab,
		RegisterID:      testRegister,
		BusinessDate:    time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		TicketCount:     2,
		CancelledCount:  1,
		Totals: domain.Totals{
			HT:  decimal.RequireFromString("41.67"),
			TVA: decimal.RequireFromString("8.33"),
			TTC: decimal.NewFromInt(50),
		},
		PaymentTotals:  []domain.PaymentTotal{{Method: domain.PaymentCard, Amount: decimal.NewFromInt(50)}},
		LastTicketHash: "lasthash",
		Hash:           "closurehash",
		Signature:      domain.Signed("sig", "k1"),
		ClosedBy:       "manager-1",
		ClosedAt:       time.Date(2025, 1, 20, 21, 0, 0, 0, time.UTC),
	}
}

func TestCloseDay_WithDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	closures := mocks.NewMockClosureService(ctrl)
	h := NewClosureHandler(closures)

	closures.EXPECT().CloseDay(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.CloseDayRequest) (*domain.Closure, error) {
			assert.Equal(t, testRegister, req.RegisterID)
			require.NotNil(t, req.Date)
			assert.Equal(t, "2025-01-20", req.Date.Format("2006-01-02"))
			assert.Equal(t, "cashier-1", req.Operator)
			return sampleClosure(), nil
		})

	c, w := newContext(http.MethodPost, "/api/v1/closures", map[string]string{
		"register_id": testRegister.String(),
		"date":        "2025-01-20",
	})
	h.CloseDay(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "closurehash", data["hash"])
	assert.Equal(t, "2025-01-20", data["date"])
	assert.EqualValues(t, 2, data["ticket_count"])
	assert.EqualValues(t, 1, data["cancelled_count"])
	assert.Equal(t, "CERTIFIED", data["signature"].(map[string]any)["kind"])
}

func TestCloseDay_DefaultsToToday(t *testing.T) {
	ctrl := gomock.NewController(t)
	closures := mocks.NewMockClosureService(ctrl)
	h := NewClosureHandler(closures)

	closures.EXPECT().CloseDay(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.CloseDayRequest) (*domain.Closure, error) {
			assert.Nil(t, req.Date)
			return sampleClosure(), nil
		})

	c, w := newContext(http.MethodPost, "/api/v1/closures", map[string]string{"register_id": testRegister.String()})
	h.CloseDay(c)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCloseDay_InvalidDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewClosureHandler(mocks.NewMockClosureService(ctrl))

	c, w := newContext(http.MethodPost, "/api/v1/closures", map[string]string{
		"register_id": testRegister.String(),
		"date":        "20/01/2025",
	})
	h.CloseDay(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_005", decodeCode(t, w))
}

func TestCloseDay_AlreadyClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	closures := mocks.NewMockClosureService(ctrl)
	h := NewClosureHandler(closures)

	closures.EXPECT().CloseDay(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrAlreadyClosed())

	c, w := newContext(http.MethodPost, "/api/v1/closures", map[string]string{"register_id": testRegister.String()})
	h.CloseDay(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PRE_004", decodeCode(t, w))
}

func TestGetClosure(t *testing.T) {
	ctrl := gomock.NewController(t)
	closures := mocks.NewMockClosureService(ctrl)
	h := NewClosureHandler(closures)

	day := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	closures.EXPECT().GetClosure(gomock.Any(), testTenant, testRegister, day).Return(sampleClosure(), nil)

	c, w := newContext(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: testRegister.String()}, {Key: "date", Value: "2025-01-20"}}
	h.GetClosure(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "50.00", decodeData(t, w)["totals"].(map[string]any)["total_ttc"])
}

func TestGetClosure_BadRegisterID(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewClosureHandler(mocks.NewMockClosureService(ctrl))

	c, w := newContext(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "till-1"}, {Key: "date", Value: "2025-01-20"}}
	h.GetClosure(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Verification Handler Tests ---

func TestVerifyChain_ReportsBreaks(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockVerificationService(ctrl)
	h := NewVerificationHandler(verifier)

	verifier.EXPECT().VerifyChain(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.VerifyRequest) (*domain.VerificationReport, error) {
			assert.Equal(t, testTenant, req.Scope.TenantID)
			require.NotNil(t, req.Scope.RegisterID)
			assert.Equal(t, testRegister, *req.Scope.RegisterID)
			require.NotNil(t, req.Scope.From)
			assert.Nil(t, req.Scope.To)
			assert.Equal(t, 100, req.Scope.Limit)
			return &domain.VerificationReport{
				IsValid:         false,
				TicketsExamined: 3,
				BrokenLinks: []domain.BrokenLink{{
					TicketNumber: "20250120-E01-R01-000002",
					RegisterID:   testRegister,
					Reason:       domain.BreakHash,
				}},
			}, nil
		})

	c, w := newContext(http.MethodGet,
		"/api/v1/chain/verify?register_id="+testRegister.String()+"&from=2025-01-20&limit=100", nil)
	h.VerifyChain(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, false, data["is_valid"])
	breaks := data["broken_links"].([]any)
	require.Len(t, breaks, 1)
	assert.Equal(t, "hash mismatch", breaks[0].(map[string]any)["reason"])
}

func TestVerifyChain_EmptyBreaksIsArray(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockVerificationService(ctrl)
	h := NewVerificationHandler(verifier)

	verifier.EXPECT().VerifyChain(gomock.Any(), gomock.Any()).
		Return(&domain.VerificationReport{IsValid: true}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/chain/verify", nil)
	h.VerifyChain(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"broken_links":[]`)
}

func TestVerifyChain_BadQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewVerificationHandler(mocks.NewMockVerificationService(ctrl))

	for _, target := range []string{
		"/api/v1/chain/verify?from=yesterday",
		"/api/v1/chain/verify?register_id=nope",
		"/api/v1/chain/verify?limit=0x",
	} {
		c, w := newContext(http.MethodGet, target, nil)
		h.VerifyChain(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

// --- Router Tests ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func newTestRouter(t *testing.T, ctrl *gomock.Controller) (*gin.Engine, *service.JWTTokenService, *mocks.MockClosureService) {
	t.Helper()
	tokens := service.NewJWTTokenService("router-test-secret", time.Hour, "pos-fiscal-ledger")
	closures := mocks.NewMockClosureService(ctrl)
	r := SetupRouter(RouterDeps{
		LedgerSvc:      mocks.NewMockLedgerService(ctrl),
		ClosureSvc:     closures,
		VerifySvc:      mocks.NewMockVerificationService(ctrl),
		TokenSvc:       tokens,
		HealthCheckers: []ports.HealthChecker{stubChecker{name: "memory"}},
		Mode:           gin.TestMode,
		Logger:         zerolog.Nop(),
	})
	return r, tokens, closures
}

func bearer(t *testing.T, tokens *service.JWTTokenService, role string) string {
	t.Helper()
	tok, _, err := tokens.Generate(ports.OperatorClaims{TenantID: testTenant, OperatorID: "op-1", Role: role})
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRouter_ClosureRequiresManager(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, tokens, closures := newTestRouter(t, ctrl)

	body := []byte(`{"register_id":"` + testRegister.String() + `"}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/closures", bytes.NewReader(body))
	req.Header.Set("Authorization", bearer(t, tokens, ports.RoleCashier))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	closures.EXPECT().CloseDay(gomock.Any(), gomock.Any()).Return(sampleClosure(), nil)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/closures", bytes.NewReader(body))
	req.Header.Set("Authorization", bearer(t, tokens, ports.RoleManager))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestRouter_APIRequiresToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, _, _ := newTestRouter(t, ctrl)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/chain/verify", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_HealthAndMetricsArePublic(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, _, _ := newTestRouter(t, ctrl)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"memory":{"status":"healthy"}`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fiscal_http_requests_total")
}

func TestHealthCheck_Degraded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "postgresql"}, stubChecker{name: "redis", err: errors.New("connection refused")})(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestRouter_LocalRateLimitAndCORS(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokens := service.NewJWTTokenService("router-test-secret", time.Hour, "pos-fiscal-ledger")
	verifier := mocks.NewMockVerificationService(ctrl)
	r := SetupRouter(RouterDeps{
		LedgerSvc:      mocks.NewMockLedgerService(ctrl),
		ClosureSvc:     mocks.NewMockClosureService(ctrl),
		VerifySvc:      verifier,
		TokenSvc:       tokens,
		RateLimitStore: middleware.NewLocalLimiter(),
		CORSOrigins:    []string{"https://till.example.com"},
		Mode:           gin.TestMode,
		Logger:         zerolog.Nop(),
	})

	limit := int(middleware.DefaultRateLimitRules()["verify"].Limit)
	verifier.EXPECT().VerifyChain(gomock.Any(), gomock.Any()).
		Return(&domain.VerificationReport{IsValid: true}, nil).Times(limit)

	auth := bearer(t, tokens, ports.RoleManager)
	for i := 0; i < limit; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/chain/verify", nil)
		req.Header.Set("Authorization", auth)
		req.Header.Set("Origin", "https://till.example.com")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "https://till.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chain/verify", nil)
	req.Header.Set("Authorization", auth)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/api/v1/tickets", nil)
	req.Header.Set("Origin", "https://till.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
