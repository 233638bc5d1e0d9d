package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsystem/posapi-bridge/internal/application/billing"
	"github.com/itsystem/posapi-bridge/internal/domain/ebarimt"
	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	"github.com/itsystem/posapi-bridge/internal/infrastructure/memory"
	"github.com/itsystem/posapi-bridge/internal/infrastructure/metrics"
	"github.com/itsystem/posapi-bridge/internal/infrastructure/pdf"
	apphttp "github.com/itsystem/posapi-bridge/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fakePOS struct {
	mu     sync.Mutex
	seq    int
	reject string
	down   bool
}

func (f *fakePOS) Submit(_ context.Context, _ *entity.DirectBillRequest) (*billing.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, fmt.Errorf("dial tcp 127.0.0.1:7080: connection refused")
	}
	if f.reject != "" {
		return &billing.SubmitResult{Success: false, Status: "ERROR", Message: f.reject}, nil
	}
	f.seq++
	date := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	return &billing.SubmitResult{
		Success:   true,
		EbarimtID: fmt.Sprintf("EB-%d", f.seq),
		Status:    "SUCCESS",
		Date:      &date,
		QRData:    "1234567890",
		Lottery:   "AB 12345678",
		Raw:       json.RawMessage(`{"status":"SUCCESS"}`),
	}, nil
}

func (f *fakePOS) Cancel(context.Context, string, time.Time) (*billing.CancelResult, error) {
	return &billing.CancelResult{Success: true, Message: "Bill deleted successfully"}, nil
}

func (f *fakePOS) SendData(context.Context) (*billing.SendDataResult, error) {
	return &billing.SendDataResult{Success: true, Message: "Data sent successfully"}, nil
}

func (f *fakePOS) Info(context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"operatorName":"test"}`), nil
}

type fakeDirectory struct{}

func (fakeDirectory) TinByRegNo(_ context.Context, regNo string) (json.RawMessage, error) {
	return json.RawMessage(`"T-` + regNo + `"`), nil
}
func (fakeDirectory) TinInfo(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(`{"name":"Test LLC"}`), nil
}
func (fakeDirectory) Branches(context.Context) (json.RawMessage, error) {
	return json.RawMessage(`[{"branchCode":"35"}]`), nil
}
func (fakeDirectory) ProductTaxCodes(context.Context) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

type testServer struct {
	app *fiber.App
	pos *fakePOS
	reg *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	pos := &fakePOS{}
	reg := prometheus.NewRegistry()
	m := metrics.New("posapi", reg)
	log := zerolog.Nop()

	parser := billing.NewRequestParser(store.Settings(), billing.HeaderDefaults{})
	bills := billing.NewBillUseCase(
		store.Receipts(), store.Returns(), store, pos, parser,
		ebarimt.NewBillProcessor(ebarimt.ProcessorConfig{}), billing.NoopLocker{}, m, log,
	)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		ServiceName: "posapi-bridge",
		Bills:       bills,
		PosAPI:      billing.NewPosAPIUseCase(pos, log),
		Settings:    billing.NewSettingsUseCase(store.Settings()),
		Logs:        billing.NewLogsUseCase(store.Receipts(), store.Returns(), store.Updates()),
		Info:        billing.NewInfoUseCase(fakeDirectory{}, billing.NoopInfoCache{}, time.Minute, log),
		ReceiptPDF:  billing.NewPDFUseCase(store.Receipts(), pdf.NewMarotoPDFGenerator()),
		Logger:      log,
		Observer:    m,
		Gatherer:    reg,
	})
	return &testServer{app: app, pos: pos, reg: reg}
}

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, body string) (*http.Response, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func billJSON(orderID, qty string) string {
	return `{
		"orderId": "` + orderID + `",
		"merchantTin": "37900846788",
		"posNo": "10012345",
		"districtCode": "3505",
		"branchNo": "001",
		"receipts": [{
			"taxType": "VAT_ABLE",
			"items": [{"name": "Сүү", "barCode": "4006381333931", "qty": ` + qty + `, "totalAmount": 5500}]
		}],
		"payments": [{"code": "CASH", "status": "PAID", "paidAmount": 5500}]
	}`
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestAddBill_EmiteYDuplicado(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodPost, "/posapi/addBill", billJSON("ORD-1", "2"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
	var bill struct {
		OrderID string `json:"orderId"`
		ID      string `json:"id"`
		Status  string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &bill))
	assert.Equal(t, "ORD-1", bill.OrderID)
	assert.Equal(t, "EB-1", bill.ID)
	assert.Equal(t, "SUCCESS", bill.Status)

	resp, env = s.do(t, http.MethodPost, "/posapi/addBill", billJSON("ORD-1", "2"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, "DUPLICATE_ORDER", env.Code)
}

func TestAddBill_Validacion(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodPost, "/posapi/addBill", billJSON("ORD-1", "0"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Equal(t, "receipts[0].items[0].qty must be greater than 0", env.Message)

	resp, env = s.do(t, http.MethodPost, "/posapi/addBill", `{"orderId":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", env.Code)
}

func TestAddBill_ErroresDelPOSAPI(t *testing.T) {
	s := newTestServer(t)

	s.pos.reject = "invalid district"
	resp, env := s.do(t, http.MethodPost, "/posapi/addBill", billJSON("ORD-1", "2"))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "FISCAL_REJECTED", env.Code)
	assert.Contains(t, env.Message, "invalid district")

	s.pos.reject = ""
	s.pos.down = true
	resp, env = s.do(t, http.MethodPost, "/posapi/addBill", billJSON("ORD-2", "2"))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "FISCAL_UNAVAILABLE", env.Code)
}

func TestUpdateBill_SinPrevio(t *testing.T) {
	s := newTestServer(t)
	resp, env := s.do(t, http.MethodPost, "/posapi/updateBill", billJSON("ORD-9", "2"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestUpdateYDeleteBill(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, http.MethodPost, "/posapi/addBill", billJSON("ORD-1", "2"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := s.do(t, http.MethodPost, "/posapi/updateBill", billJSON("ORD-1", "2"))
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	resp, env = s.do(t, http.MethodGet, "/posapi/updates?orderId=ORD-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updates struct {
		Items []struct {
			OldID string `json:"oldId"`
			NewID string `json:"newId"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updates))
	require.Len(t, updates.Items, 1)
	assert.Equal(t, "EB-1", updates.Items[0].OldID)
	assert.Equal(t, "EB-2", updates.Items[0].NewID)

	resp, env = s.do(t, http.MethodPost, "/posapi/deleteBill", `{"ebarimtId":"EB-2"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	resp, env = s.do(t, http.MethodGet, "/posapi/returns?orderId=ORD-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"ebarimtId":"EB-2"`)
}

func TestCalculate(t *testing.T) {
	s := newTestServer(t)
	resp, env := s.do(t, http.MethodPost, "/posapi/calculate", billJSON("ORD-1", "2"))
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Contains(t, string(env.Data), `"merchantTin":"37900846788"`)

	resp, env = s.do(t, http.MethodGet, "/posapi/response-logs", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"total":0`, "calculate no registra envíos")
}

func TestSettings(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodGet, "/posapi/settings", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env = s.do(t, http.MethodPost, "/posapi/settings", `{"merchantTin":"37900846788"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "posNo is required", env.Message)

	resp, _ = s.do(t, http.MethodPost, "/posapi/settings", `{"merchantTin":"37900846788","posNo":"10012345","districtCode":"3505"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = s.do(t, http.MethodGet, "/posapi/settings/37900846788", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"posNo":"10012345"`)

	resp, _ = s.do(t, http.MethodDelete, "/posapi/settings/37900846788", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.do(t, http.MethodDelete, "/posapi/settings/37900846788", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResponseLogs(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/posapi/addBill", billJSON("ORD-1", "2"))

	resp, env := s.do(t, http.MethodGet, "/posapi/response-logs?status=success&limit=10", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"orderId":"ORD-1"`)
	assert.Contains(t, string(env.Data), `"limit":10`)

	resp, env = s.do(t, http.MethodGet, "/posapi/response-logs?status=pending", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", env.Code)

	resp, env = s.do(t, http.MethodGet, "/posapi/response-logs/ORD-1?merchantTin=37900846788", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"ebarimtId":"EB-1"`)

	resp, _ = s.do(t, http.MethodGet, "/posapi/response-logs/ORD-404", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInfoYSendBills(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, http.MethodGet, "/posapi/info/tin-by-reg/AA00112233", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `"T-AA00112233"`, string(env.Data))

	resp, env = s.do(t, http.MethodGet, "/posapi/info", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"operatorName":"test"}`, string(env.Data))

	resp, env = s.do(t, http.MethodPost, "/posapi/sendBills", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Data sent successfully", env.Message)
}

func TestReceiptPDF(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/posapi/addBill", billJSON("ORD-1", "2"))

	resp, _ := s.do(t, http.MethodGet, "/posapi/receipts/ORD-1/pdf", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "ebarimt-ORD-1.pdf")
}

func TestRutaInexistente(t *testing.T) {
	s := newTestServer(t)
	resp, env := s.do(t, http.MethodGet, "/posapi/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/health", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `posapi_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
