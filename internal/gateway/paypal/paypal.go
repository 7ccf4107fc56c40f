// Package paypal is a small client for the PayPal v2 checkout orders API.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gig-marketplace-api/internal/entity"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultCurrency = "USD"

	issueAlreadyCaptured = "ORDER_ALREADY_CAPTURED"
)

type Config struct {
	ClientId     string
	ClientSecret string
	BaseUrl      string
	Currency     string
	Timeout      time.Duration
}

type Client struct {
	baseUrl  string
	currency string
	http     *http.Client
}

// NewClient returns a client that obtains and refreshes its access token with
// the client-credentials grant. ctx bounds token requests only.
func NewClient(ctx context.Context, cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	currency := cfg.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	baseUrl := strings.TrimRight(cfg.BaseUrl, "/")

	credentials := clientcredentials.Config{
		ClientID:     cfg.ClientId,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     baseUrl + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	httpClient := credentials.Client(ctx)
	httpClient.Timeout = timeout

	return &Client{
		baseUrl:  baseUrl,
		currency: currency,
		http:     httpClient,
	}
}

// APIError is a non-2xx answer from PayPal.
type APIError struct {
	StatusCode int
	Name       string `json:"name"`
	Message    string `json:"message"`
	DebugId    string `json:"debug_id"`
	Details    []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
}

func (e *APIError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("paypal: status %d", e.StatusCode)
	}

	return fmt.Sprintf("paypal: status %d: %s: %s (debug_id %s)", e.StatusCode, e.Name, e.Message, e.DebugId)
}

func (e *APIError) HasIssue(issue string) bool {
	for _, d := range e.Details {
		if d.Issue == issue {
			return true
		}
	}

	return false
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	ReferenceId string `json:"reference_id,omitempty"`
	CustomId    string `json:"custom_id,omitempty"`
	Description string `json:"description,omitempty"`
	Amount      amount `json:"amount"`
}

type applicationContext struct {
	ReturnUrl  string `json:"return_url,omitempty"`
	CancelUrl  string `json:"cancel_url,omitempty"`
	UserAction string `json:"user_action,omitempty"`
}

type createOrderRequest struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []purchaseUnit     `json:"purchase_units"`
	ApplicationContext applicationContext `json:"application_context"`
}

type link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type capture struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}

type orderResponse struct {
	Id            string `json:"id"`
	Status        string `json:"status"`
	Links         []link `json:"links"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []capture `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (o *orderResponse) approveLink() string {
	for _, l := range o.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			return l.Href
		}
	}

	return ""
}

func (o *orderResponse) firstCapture() capture {
	for _, pu := range o.PurchaseUnits {
		if len(pu.Payments.Captures) > 0 {
			return pu.Payments.Captures[0]
		}
	}

	return capture{}
}

func (o *orderResponse) toCapture() *entity.GatewayCapture {
	c := o.firstCapture()

	return &entity.GatewayCapture{
		OrderId:       o.Id,
		Status:        o.Status,
		CaptureId:     c.Id,
		CaptureStatus: c.Status,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("paypal: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(payload, apiErr)
		return apiErr
	}

	if out == nil || len(payload) == 0 {
		return nil
	}

	return json.Unmarshal(payload, out)
}

func (c *Client) CreateOrder(ctx context.Context, input *entity.CreateOrderInput) (*entity.GatewayOrder, error) {
	req := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceId: input.GigId.String(),
			CustomId:    input.PaymentId.String(),
			Description: input.Description,
			Amount: amount{
				CurrencyCode: c.currency,
				Value:        input.Amount.StringFixed(2),
			},
		}},
		ApplicationContext: applicationContext{
			ReturnUrl:  input.ReturnUrl,
			CancelUrl:  input.CancelUrl,
			UserAction: "PAY_NOW",
		},
	}

	var order orderResponse
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", req, nil, &order); err != nil {
		return nil, err
	}

	return &entity.GatewayOrder{
		Id:          order.Id,
		Status:      order.Status,
		ApproveLink: order.approveLink(),
	}, nil
}

// CaptureOrder captures an approved order. An order that was captured before
// is reported with its existing capture.
func (c *Client) CaptureOrder(ctx context.Context, orderId string) (*entity.GatewayCapture, error) {
	headers := map[string]string{"PayPal-Request-Id": "capture-" + orderId}

	var order orderResponse
	err := c.do(ctx, http.MethodPost, "/v2/checkout/orders/"+url.PathEscape(orderId)+"/capture", struct{}{}, headers, &order)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.HasIssue(issueAlreadyCaptured) {
			existing, getErr := c.getOrder(ctx, orderId)
			if getErr != nil {
				return nil, getErr
			}

			return existing.toCapture(), nil
		}

		return nil, err
	}

	return order.toCapture(), nil
}

func (c *Client) getOrder(ctx context.Context, orderId string) (*orderResponse, error) {
	var order orderResponse
	if err := c.do(ctx, http.MethodGet, "/v2/checkout/orders/"+url.PathEscape(orderId), nil, nil, &order); err != nil {
		return nil, err
	}

	return &order, nil
}

func (c *Client) GetOrder(ctx context.Context, orderId string) (*entity.GatewayOrder, error) {
	order, err := c.getOrder(ctx, orderId)
	if err != nil {
		return nil, err
	}

	return &entity.GatewayOrder{
		Id:          order.Id,
		Status:      order.Status,
		ApproveLink: order.approveLink(),
	}, nil
}
