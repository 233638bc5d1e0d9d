package posapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsystem/posapi-bridge/internal/application/billing"
	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	"github.com/itsystem/posapi-bridge/internal/infrastructure/posapi"
)

func document() *entity.DirectBillRequest {
	d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return &entity.DirectBillRequest{
		OrderID:      "ORD-1",
		TotalAmount:  d("5500"),
		TotalVAT:     d("500"),
		TotalCityTax: decimal.Zero,
		DistrictCode: "3505",
		MerchantTin:  "37900846788",
		PosNo:        "10012345",
		BranchNo:     "001",
		BillIDSuffix: "01",
		Type:         "B2C_RECEIPT",
		Receipts: []entity.DirectReceipt{{
			TotalAmount: d("5500"), TotalVAT: d("500"), TotalCityTax: decimal.Zero,
			TaxType: "VAT_ABLE", MerchantTin: "37900846788",
			Items: []entity.DirectItem{{
				Name: "Сүү", BarCode: "4006381333931", BarCodeType: "GS1", ClassificationCode: "2349010",
				MeasureUnit: "ш", Qty: d("2"), UnitPrice: d("2750"), TotalVAT: d("500"),
				TotalCityTax: decimal.Zero, TotalAmount: d("5500"),
			}},
		}},
		Payments: []entity.PaymentLine{{Code: "CASH", Status: "PAID", PaidAmount: d("5500")}},
	}
}

func newClient(url string) *posapi.Client {
	return posapi.NewClient(url, 2*time.Second, zerolog.Nop()).WithLocation(time.UTC)
}

func TestSubmit_Exito(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/receipt", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"id":"037900846788001095000000110000063","status":"SUCCESS","date":"2026-10-18 12:30:00","qrData":"1234567890","lottery":"AB 12345678"}`)
	}))
	defer srv.Close()

	res, err := newClient(srv.URL).Submit(context.Background(), document())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "SUCCESS", res.Status)
	assert.Equal(t, "037900846788001095000000110000063", res.EbarimtID)
	assert.Equal(t, "AB 12345678", res.Lottery)
	require.NotNil(t, res.Date)
	assert.Equal(t, time.Date(2026, 10, 18, 12, 30, 0, 0, time.UTC), *res.Date)
	assert.NotEmpty(t, res.Raw)

	// Números JSON y sin orderId.
	assert.Equal(t, 5500.0, got["totalAmount"])
	assert.NotContains(t, got, "orderId")
	receipts := got["receipts"].([]any)
	item := receipts[0].(map[string]any)["items"].([]any)[0].(map[string]any)
	assert.Equal(t, 2750.0, item["unitPrice"])
	assert.Equal(t, "GS1", item["barCodeType"])
	assert.Nil(t, got["reportMonth"])
}

func TestSubmit_RechazoConCuerpo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"status":"ERROR","message":"merchantTin not registered"}`)
	}))
	defer srv.Close()

	res, err := newClient(srv.URL).Submit(context.Background(), document())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "ERROR", res.Status)
	assert.Equal(t, "merchantTin not registered", res.Message)
}

func TestSubmit_CuerpoIlegibleEsTransporte(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Submit(context.Background(), document())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestSubmit_SinServidor(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(url).Submit(context.Background(), document())
	assert.Error(t, err)
}

func TestCancel(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	asOf := time.Date(2026, 10, 18, 9, 5, 7, 0, time.UTC)
	res, err := newClient(srv.URL).Cancel(context.Background(), "EB-1", asOf)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, map[string]string{"id": "EB-1", "date": "2026-10-18 09:05:07"}, body)
	assert.Equal(t, asOf.Format(billing.DateLayout), body["date"])
}

func TestCancel_Rechazo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "receipt not found")
	}))
	defer srv.Close()

	res, err := newClient(srv.URL).Cancel(context.Background(), "EB-1", time.Now())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "receipt not found")
}

func TestSendDataEInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/sendData":
			_, _ = io.WriteString(w, "OK")
		case "/rest/info":
			_, _ = io.WriteString(w, `{"operatorName":"ИТ Систем","leftLotteries":900}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	c := newClient(srv.URL)

	sent, err := c.SendData(context.Background())
	require.NoError(t, err)
	assert.True(t, sent.Success)
	assert.JSONEq(t, `"OK"`, string(sent.Raw))

	info, err := c.Info(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"operatorName":"ИТ Систем","leftLotteries":900}`, string(info))
}
