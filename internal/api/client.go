// Package api is the REST client for the remote billing backend.
//
// The backend is an external collaborator reached over HTTPS with JSON
// bodies and bearer-token authentication. The token is loaded from the
// TokenStore and attached to every request as "Authorization: Bearer".
//
// Error Handling:
//   - Non-2xx responses become *APIError values carrying the status code
//     and the backend's message; 401 and 404 map to the ErrUnauthorized and
//     ErrNotFound sentinels.
//   - Transport failures and timeouts become *RequestError values matching
//     the ErrNetwork sentinel.
//   - No request is ever retried automatically; recovery is user-initiated.
//
// Wire Conventions:
//   - Dates are serialized as YYYY-MM-DD (models.Date).
//   - Monetary values are plain JSON numbers in major units (money.Amount).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"rmsbilling/internal/logger"
	"rmsbilling/pkg/models"
)

// Client talks to the billing backend.
type Client struct {
	http   *resty.Client
	tokens TokenStore
	log    zerolog.Logger
}

// New creates a Client for the given base URL. The timeout applies to every
// request; a request that exceeds it is reported as a network error.
func New(baseURL string, timeout time.Duration, tokens TokenStore) *Client {
	c := &Client{
		tokens: tokens,
		log:    logger.WithComponent("api-client"),
	}

	c.http = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			token, err := tokens.Token()
			if err != nil {
				return err
			}
			if token != "" {
				req.SetHeader("Authorization", "Bearer "+token)
			}
			return nil
		})

	return c
}

// errorBody is the shape of backend error responses. Different endpoints
// use different field names, so all are tried.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

func (b errorBody) text() string {
	switch {
	case b.Message != "":
		return b.Message
	case b.Error != "":
		return b.Error
	default:
		return b.Detail
	}
}

// do executes the prepared request and converts failures into the package's
// error taxonomy.
func (c *Client) do(ctx context.Context, op string, req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		timeout := isTimeout(err)
		c.log.Error().
			Err(err).
			Str("op", op).
			Str("path", path).
			Bool("timeout", timeout).
			Msg("Request transport failure")
		return nil, &RequestError{Op: op, Err: err, Timeout: timeout}
	}

	if resp.IsError() {
		var body errorBody
		_ = json.Unmarshal(resp.Body(), &body)

		sentinel := ErrBackend
		switch resp.StatusCode() {
		case http.StatusUnauthorized, http.StatusForbidden:
			sentinel = ErrUnauthorized
		case http.StatusNotFound:
			sentinel = ErrNotFound
		}

		c.log.Warn().
			Str("op", op).
			Str("path", path).
			Int("status", resp.StatusCode()).
			Str("message", body.text()).
			Msg("Backend rejected request")
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode(), Message: body.text(), Err: sentinel}
	}

	return resp, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// --- Auth ---

// Login exchanges credentials for a bearer token pair and persists it.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthTokens, error) {
	const op = "Login"
	var tokens models.AuthTokens
	if _, err := c.do(ctx, op, c.http.R().SetBody(req).SetResult(&tokens), resty.MethodPost, "/auth/login"); err != nil {
		return nil, err
	}
	if err := c.tokens.Save(tokens); err != nil {
		return nil, fmt.Errorf("%s: failed to persist tokens: %w", op, err)
	}
	return &tokens, nil
}

// Register creates an account and persists the issued token pair.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthTokens, error) {
	const op = "Register"
	var tokens models.AuthTokens
	if _, err := c.do(ctx, op, c.http.R().SetBody(req).SetResult(&tokens), resty.MethodPost, "/auth/register"); err != nil {
		return nil, err
	}
	if err := c.tokens.Save(tokens); err != nil {
		return nil, fmt.Errorf("%s: failed to persist tokens: %w", op, err)
	}
	return &tokens, nil
}

// Logout clears the persisted tokens. Purely local; the backend keeps no
// session state beyond the token itself.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// --- Reference data ---

// Customers lists all customers.
func (c *Client) Customers(ctx context.Context) ([]models.Customer, error) {
	var out []models.Customer
	if _, err := c.do(ctx, "Customers", c.http.R().SetResult(&out), resty.MethodGet, "/customers"); err != nil {
		return nil, err
	}
	return out, nil
}

// ServiceTypes lists all billable service types.
func (c *Client) ServiceTypes(ctx context.Context) ([]models.ServiceType, error) {
	var out []models.ServiceType
	if _, err := c.do(ctx, "ServiceTypes", c.http.R().SetResult(&out), resty.MethodGet, "/service-types"); err != nil {
		return nil, err
	}
	return out, nil
}

// ClientTypes lists all client types.
func (c *Client) ClientTypes(ctx context.Context) ([]models.ClientType, error) {
	var out []models.ClientType
	if _, err := c.do(ctx, "ClientTypes", c.http.R().SetResult(&out), resty.MethodGet, "/client-types"); err != nil {
		return nil, err
	}
	return out, nil
}

// Companies lists the issuing companies, the source of receipt number
// prefixes.
func (c *Client) Companies(ctx context.Context) ([]models.Company, error) {
	var out []models.Company
	if _, err := c.do(ctx, "Companies", c.http.R().SetResult(&out), resty.MethodGet, "/companies"); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Invoices ---

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	CustomerID string
	Status     models.InvoiceStatus
}

// Invoices lists invoices, optionally filtered by customer and status.
func (c *Client) Invoices(ctx context.Context, filter InvoiceFilter) ([]models.Invoice, error) {
	req := c.http.R()
	if filter.CustomerID != "" {
		req.SetQueryParam("customerId", filter.CustomerID)
	}
	if filter.Status != "" {
		req.SetQueryParam("status", string(filter.Status))
	}
	var out []models.Invoice
	if _, err := c.do(ctx, "Invoices", req.SetResult(&out), resty.MethodGet, "/invoices"); err != nil {
		return nil, err
	}
	return out, nil
}

// OutstandingInvoices lists a customer's invoices that still carry an
// outstanding balance, the read model for receipt allocation.
func (c *Client) OutstandingInvoices(ctx context.Context, customerID string) ([]models.OutstandingInvoice, error) {
	req := c.http.R().
		SetQueryParam("customerId", customerID).
		SetQueryParam("outstanding", "true")
	var out []models.OutstandingInvoice
	if _, err := c.do(ctx, "OutstandingInvoices", req.SetResult(&out), resty.MethodGet, "/invoices"); err != nil {
		return nil, err
	}
	return out, nil
}

// Invoice fetches one invoice by ID.
func (c *Client) Invoice(ctx context.Context, id string) (*models.Invoice, error) {
	var out models.Invoice
	if _, err := c.do(ctx, "Invoice", c.http.R().SetResult(&out), resty.MethodGet, "/invoices/"+id); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateInvoice submits a new invoice.
func (c *Client) CreateInvoice(ctx context.Context, payload InvoiceRequest) (*models.Invoice, error) {
	var out models.Invoice
	if _, err := c.do(ctx, "CreateInvoice", c.http.R().SetBody(payload).SetResult(&out), resty.MethodPost, "/invoices"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateInvoice replaces an existing invoice.
func (c *Client) UpdateInvoice(ctx context.Context, id string, payload InvoiceRequest) (*models.Invoice, error) {
	var out models.Invoice
	if _, err := c.do(ctx, "UpdateInvoice", c.http.R().SetBody(payload).SetResult(&out), resty.MethodPut, "/invoices/"+id); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteInvoice removes an invoice.
func (c *Client) DeleteInvoice(ctx context.Context, id string) error {
	_, err := c.do(ctx, "DeleteInvoice", c.http.R(), resty.MethodDelete, "/invoices/"+id)
	return err
}

// InvoicePDF downloads the rendered PDF for an invoice. The document is
// produced server-side; the console only stores the bytes.
func (c *Client) InvoicePDF(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.do(ctx, "InvoicePDF", c.http.R(), resty.MethodGet, "/invoices/"+id+"/pdf")
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// SendInvoiceEmail dispatches a transactional email for an invoice.
func (c *Client) SendInvoiceEmail(ctx context.Context, id string, req models.EmailRequest) error {
	_, err := c.do(ctx, "SendInvoiceEmail", c.http.R().SetBody(req), resty.MethodPost, "/invoices/"+id+"/send-email")
	return err
}

// --- Receipts ---

// CreateReceipt submits a new receipt with its computed allocations. The
// backend applies the resulting invoice status transitions.
func (c *Client) CreateReceipt(ctx context.Context, payload ReceiptRequest) (*models.Receipt, error) {
	var out models.Receipt
	if _, err := c.do(ctx, "CreateReceipt", c.http.R().SetBody(payload).SetResult(&out), resty.MethodPost, "/receipts"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Receipts lists receipts.
func (c *Client) Receipts(ctx context.Context) ([]models.Receipt, error) {
	var out []models.Receipt
	if _, err := c.do(ctx, "Receipts", c.http.R().SetResult(&out), resty.MethodGet, "/receipts"); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Credit notes ---

// CreateCreditNote submits a new credit note with its computed GST figures.
func (c *Client) CreateCreditNote(ctx context.Context, payload CreditNoteRequest) (*models.CreditNote, error) {
	var out models.CreditNote
	if _, err := c.do(ctx, "CreateCreditNote", c.http.R().SetBody(payload).SetResult(&out), resty.MethodPost, "/credit-notes"); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreditNotes lists credit notes.
func (c *Client) CreditNotes(ctx context.Context) ([]models.CreditNote, error) {
	var out []models.CreditNote
	if _, err := c.do(ctx, "CreditNotes", c.http.R().SetResult(&out), resty.MethodGet, "/credit-notes"); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Dashboard (server-side aggregates, rendered only) ---

// DashboardMetrics fetches the headline financial summary.
func (c *Client) DashboardMetrics(ctx context.Context) (*models.DashboardMetrics, error) {
	var out models.DashboardMetrics
	if _, err := c.do(ctx, "DashboardMetrics", c.http.R().SetResult(&out), resty.MethodGet, "/dashboard/metrics"); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevenueTrend fetches the revenue-over-time series.
func (c *Client) RevenueTrend(ctx context.Context) ([]models.RevenueTrendPoint, error) {
	var out []models.RevenueTrendPoint
	if _, err := c.do(ctx, "RevenueTrend", c.http.R().SetResult(&out), resty.MethodGet, "/dashboard/revenue-trend"); err != nil {
		return nil, err
	}
	return out, nil
}

// AgingAnalysis fetches the receivables aging buckets.
func (c *Client) AgingAnalysis(ctx context.Context) ([]models.AgingBucket, error) {
	var out []models.AgingBucket
	if _, err := c.do(ctx, "AgingAnalysis", c.http.R().SetResult(&out), resty.MethodGet, "/dashboard/aging-analysis"); err != nil {
		return nil, err
	}
	return out, nil
}

// CustomerRevenue fetches revenue grouped by customer type.
func (c *Client) CustomerRevenue(ctx context.Context) ([]models.CustomerRevenue, error) {
	var out []models.CustomerRevenue
	if _, err := c.do(ctx, "CustomerRevenue", c.http.R().SetResult(&out), resty.MethodGet, "/dashboard/customer-revenue"); err != nil {
		return nil, err
	}
	return out, nil
}
