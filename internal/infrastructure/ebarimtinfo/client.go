// Package ebarimtinfo cliente de las consultas públicas de api.ebarimt.mn (TIN, sucursales, códigos de producto).
package ebarimtinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/itsystem/posapi-bridge/internal/application/billing"
)

var _ billing.TaxpayerDirectory = (*Client)(nil)

const (
	tinByRegPath       = "/info/check/getTinInfo"
	tinInfoPath        = "/info/check/getInfo"
	branchesPath       = "/info/check/getBranchInfo"
	productTaxCodePath = "/receipt/receipt/getProductTaxCode"
)

// envelope respuesta de la API: {msg, status, data}; status 200 indica éxito.
type envelope struct {
	Msg    string          `json:"msg"`
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Client implementa billing.TaxpayerDirectory con límite de peticiones por segundo.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient construye el cliente. rps <= 0 desactiva el límite.
func NewClient(baseURL string, rps int, timeout time.Duration) *Client {
	lim := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), rps)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    lim,
	}
}

func (c *Client) TinByRegNo(ctx context.Context, regNo string) (json.RawMessage, error) {
	return c.get(ctx, tinByRegPath, url.Values{"regNo": {strings.TrimSpace(regNo)}})
}

func (c *Client) TinInfo(ctx context.Context, tin string) (json.RawMessage, error) {
	return c.get(ctx, tinInfoPath, url.Values{"tin": {strings.TrimSpace(tin)}})
}

func (c *Client) Branches(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, branchesPath, nil)
}

func (c *Client) ProductTaxCodes(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, productTaxCodePath, nil)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ebarimt api: límite de peticiones: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("ebarimt api: crear request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ebarimt api: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("ebarimt api: leer respuesta: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ebarimt api error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("ebarimt api: decodificar respuesta: %w", err)
	}
	if env.Status != http.StatusOK {
		return nil, fmt.Errorf("ebarimt api returned non-200 status: %d - %s", env.Status, env.Msg)
	}
	if len(env.Data) == 0 {
		return json.RawMessage("null"), nil
	}
	return env.Data, nil
}
