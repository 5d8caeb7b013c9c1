// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ajmalkv/rollsops/internal/domain"
	"github.com/rs/zerolog/log"
)

// TokenSource supplies the auth token attached to outgoing requests. A missing
// token is not an error at this layer; the server decides authorization.
type TokenSource interface {
	Token() string
}

// Client wraps the rolls-inventory backend REST API. Every response is decoded
// against a single explicit schema per endpoint; malformed payloads are
// rejected rather than probed for alternate shapes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// envelope is the response wrapper every JSON endpoint uses.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// LoginResult carries the opaque token and profile returned on login. The
// session store records it; this client never stores it itself.
type LoginResult struct {
	Token       string          `json:"token"`
	UserDetails json.RawMessage `json:"userDetails"`
}

// CreatePOResult distinguishes a created order from a business-rule rejection
// (duplicate PO number, validation failure). A 400 response is returned here
// as a normal result so callers can render the server's message without
// error-handling boilerplate.
type CreatePOResult struct {
	Created bool
	Message string
	Order   *domain.PurchaseOrder
}

// RollsUsageSummary is the full payload of the summary endpoint.
type RollsUsageSummary struct {
	Totals domain.UsageTotals         `json:"summary"`
	Owners []domain.OwnerUsageSummary `json:"owners"`
}

// Login authenticates an operations user by employee id and password.
func (c *Client) Login(ctx context.Context, employeeID, password string) (*LoginResult, error) {
	q := url.Values{}
	q.Set("employee_id", employeeID)
	q.Set("password", password)

	env, err := c.do(ctx, http.MethodPost, "/auth/operations/login?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result LoginResult
	if err := decodeData(env, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, fmt.Errorf("login response missing token")
	}
	return &result, nil
}

// ListPurchaseOrders fetches one page of purchase orders.
func (c *Client) ListPurchaseOrders(ctx context.Context, page, limit int) ([]domain.PurchaseOrder, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	env, err := c.do(ctx, http.MethodGet, "/purchase_orders/list?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		PurchaseOrders []domain.PurchaseOrder `json:"purchase_orders"`
	}
	if err := decodeData(env, &payload); err != nil {
		return nil, err
	}
	return payload.PurchaseOrders, nil
}

// GetPurchaseOrder fetches a single purchase order by id.
func (c *Client) GetPurchaseOrder(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	env, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/purchase_orders/get/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var order domain.PurchaseOrder
	if err := decodeData(env, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreatePurchaseOrder submits a new purchase order. A 400-class response is
// not an error: the server's message comes back in the result.
func (c *Client) CreatePurchaseOrder(ctx context.Context, input domain.CreatePurchaseOrderInput) (*CreatePOResult, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode create payload: %w", err)
	}

	resp, err := c.send(ctx, http.MethodPost, "/purchase_orders/create", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read create response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode create response: %w", err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		log.Debug().Int("status", resp.StatusCode).Str("message", env.Message).Msg("purchase order rejected")
		return &CreatePOResult{Created: false, Message: env.Message}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("create purchase order: status %d: %s", resp.StatusCode, env.Message)
	}

	result := &CreatePOResult{Created: true, Message: env.Message}
	if len(env.Data) > 0 {
		var order domain.PurchaseOrder
		if err := json.Unmarshal(env.Data, &order); err != nil {
			return nil, fmt.Errorf("decode created purchase order: %w", err)
		}
		result.Order = &order
	}
	return result, nil
}

// UpdatePurchaseOrder saves an inline edit.
func (c *Client) UpdatePurchaseOrder(ctx context.Context, id int64, input domain.CreatePurchaseOrderInput) (*domain.PurchaseOrder, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode update payload: %w", err)
	}

	env, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/purchase_orders/update/%d", id), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var order domain.PurchaseOrder
	if err := decodeData(env, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// DeletePurchaseOrder removes a purchase order.
func (c *Client) DeletePurchaseOrder(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/purchase_orders/delete/%d", id), nil)
	return err
}

// Districts fetches the canonical district list.
func (c *Client) Districts(ctx context.Context) (domain.DistrictList, error) {
	env, err := c.do(ctx, http.MethodGet, "/purchase_orders/districts", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Districts domain.DistrictList `json:"districts"`
	}
	if err := decodeData(env, &payload); err != nil {
		return nil, err
	}
	return payload.Districts, nil
}

// RollsUsageSummary fetches the per-owner usage summary plus fleet totals.
func (c *Client) RollsUsageSummary(ctx context.Context) (*RollsUsageSummary, error) {
	env, err := c.do(ctx, http.MethodGet, "/rolls_usage/summary", nil)
	if err != nil {
		return nil, err
	}

	var summary RollsUsageSummary
	if err := decodeData(env, &summary); err != nil {
		return nil, err
	}
	if summary.Owners == nil {
		return nil, fmt.Errorf("rolls usage summary missing owners")
	}
	return &summary, nil
}

// OwnerVehicleUsage fetches the per-vehicle breakdown for one owner.
func (c *Client) OwnerVehicleUsage(ctx context.Context, ownerID int64) ([]domain.VehicleUsage, error) {
	env, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/rolls_usage/%d/vehicles", ownerID), nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Vehicles []domain.VehicleUsage `json:"vehicles"`
	}
	if err := decodeData(env, &payload); err != nil {
		return nil, err
	}
	return payload.Vehicles, nil
}

// OwnerTicketCount fetches a bus-wise ticket count report over a date range.
func (c *Client) OwnerTicketCount(ctx context.Context, ownerID int64, fromDate, toDate string) (*domain.TicketCountReport, error) {
	q := url.Values{}
	q.Set("from_date", fromDate)
	q.Set("to_date", toDate)

	env, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/rolls_usage/%d/ticket-count?%s", ownerID, q.Encode()), nil)
	if err != nil {
		return nil, err
	}

	var report domain.TicketCountReport
	if err := decodeData(env, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DownloadPOExcel fetches the purchase-order spreadsheet as an opaque blob.
func (c *Client) DownloadPOExcel(ctx context.Context) ([]byte, error) {
	return c.download(ctx, "/purchase_orders/po-excel")
}

// DownloadHandoverExcel fetches the handover-details spreadsheet for a date range.
func (c *Client) DownloadHandoverExcel(ctx context.Context, fromDate, toDate string) ([]byte, error) {
	q := url.Values{}
	q.Set("from_date", fromDate)
	q.Set("to_date", toDate)
	return c.download(ctx, "/purchase_orders/handover-details-excel?"+q.Encode())
}

func (c *Client) download(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download %s: status %d", path, resp.StatusCode)
	}
	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}
	return blob, nil
}

// do performs a request and decodes the standard envelope, treating any
// non-2xx status as a failure.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*envelope, error) {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return &env, nil
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	// The backend reads the auth token from a bare "token" header.
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("token", token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func decodeData(env *envelope, out any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("response missing data field")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
