package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pk-mender/desafiojr/internal/customer/metrics"
	"github.com/pk-mender/desafiojr/internal/customer/models"
	"github.com/pk-mender/desafiojr/internal/customer/tracer"
	id "github.com/pk-mender/desafiojr/pkg/domain"
)

// TotalCountHeader carries the number of records matching a list filter.
const TotalCountHeader = "X-Total-Count"

// Operation names used in errors, spans and metrics.
const (
	OpList      = "list"
	OpFindByCPF = "find_by_cpf"
	OpGet       = "get"
	OpCreate    = "create"
	OpUpdate    = "update"
	OpRemove    = "remove"
	OpPing      = "ping"
)

const maxResponseBytes = 4 << 20

// HTTPClient implements Gateway against a json-server style collection:
// GET/POST on the collection URL, GET/PATCH/DELETE on {url}/{id}.
type HTTPClient struct {
	baseURL  string
	client   HTTPDoer
	timeout  time.Duration
	cpfMatch models.CPFMatch
	tracer   tracer.Tracer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

var _ Gateway = (*HTTPClient)(nil)

// Option configures the HTTPClient.
type Option func(*HTTPClient)

// WithHTTPDoer sets a custom HTTP client (for testing).
func WithHTTPDoer(d HTTPDoer) Option {
	return func(c *HTTPClient) { c.client = d }
}

// WithTimeout bounds every call. Defaults to 10s.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

// WithCPFMatch selects exact or prefix-like matching for list CPF filters.
func WithCPFMatch(m models.CPFMatch) Option {
	return func(c *HTTPClient) { c.cpfMatch = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *HTTPClient) { c.tracer = t }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// NewHTTPClient creates a client for the collection at baseURL
// (e.g. http://localhost:3000/clientes).
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		timeout:  10 * time.Second,
		cpfMatch: models.CPFMatchExact,
		tracer:   tracer.NewNoop(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	return c
}

// ListParams renders q as json-server query parameters.
func (c *HTTPClient) ListParams(q models.Query) url.Values {
	p := url.Values{}
	p.Set("_page", strconv.Itoa(q.Page))
	p.Set("_limit", strconv.Itoa(q.PageSize))
	p.Set("_sort", q.Sort.Column)
	p.Set("_order", string(q.Sort.Direction))
	if q.Filter.Name != "" {
		p.Set("nome_like", q.Filter.Name)
	}
	if q.Filter.CPF != "" {
		if c.cpfMatch == models.CPFMatchLike {
			p.Set("cpf_like", "^"+regexpQuote(q.Filter.CPF))
		} else {
			p.Set("cpf", q.Filter.CPF)
		}
	}
	return p
}

func (c *HTTPClient) List(ctx context.Context, q models.Query) (models.Page, error) {
	body, header, err := c.do(ctx, OpList, http.MethodGet, c.baseURL+"?"+c.ListParams(q).Encode(), nil)
	if err != nil {
		return models.Page{}, err
	}

	var records []customerWire
	if err := json.Unmarshal(body, &records); err != nil {
		return models.Page{}, c.fail(OpList, newError(ErrorBadData, OpList, "failed to parse response", err))
	}

	page := models.Page{Records: toModels(records)}
	if raw := header.Get(TotalCountHeader); raw != "" {
		if n, convErr := strconv.Atoi(strings.TrimSpace(raw)); convErr == nil && n >= 0 {
			page.Total = n
			page.TotalKnown = true
		}
	}
	return page, nil
}

// FindByCPF returns every record whose CPF has the same digits as cpf,
// whichever spelling it was stored under. The API compares text, so the bare
// and the NNN.NNN.NNN-NN spelling are each queried and the answers merged.
func (c *HTTPClient) FindByCPF(ctx context.Context, cpf string) ([]models.Customer, error) {
	digits := id.DigitsOnly(cpf)
	spellings := []string{digits}
	if formatted := id.CPF(digits).Formatted(); formatted != digits {
		spellings = append(spellings, formatted)
	}

	var (
		found []models.Customer
		seen  = make(map[id.CustomerID]bool)
	)
	for _, spelling := range spellings {
		p := url.Values{}
		p.Set("cpf", spelling)
		body, _, err := c.do(ctx, OpFindByCPF, http.MethodGet, c.baseURL+"?"+p.Encode(), nil)
		if err != nil {
			return nil, err
		}
		var records []customerWire
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, c.fail(OpFindByCPF, newError(ErrorBadData, OpFindByCPF, "failed to parse response", err))
		}
		for _, rec := range toModels(records) {
			// a server that ignores the filter must not produce false duplicates
			if id.DigitsOnly(rec.CPF) != digits || seen[rec.ID] {
				continue
			}
			seen[rec.ID] = true
			found = append(found, rec)
		}
	}
	return found, nil
}

func (c *HTTPClient) Get(ctx context.Context, customerID id.CustomerID) (models.Customer, error) {
	body, _, err := c.do(ctx, OpGet, http.MethodGet, c.recordURL(customerID), nil)
	if err != nil {
		return models.Customer{}, err
	}
	return c.decodeRecord(OpGet, body)
}

func (c *HTTPClient) Create(ctx context.Context, customer models.Customer) (models.Customer, error) {
	body, _, err := c.do(ctx, OpCreate, http.MethodPost, c.baseURL, toWire(customer))
	if err != nil {
		return models.Customer{}, err
	}
	created, err := c.decodeRecord(OpCreate, body)
	if err != nil {
		return models.Customer{}, err
	}
	if created.ID.IsNil() {
		return models.Customer{}, c.fail(OpCreate, newError(ErrorContractMismatch, OpCreate, "created record has no id", nil))
	}
	return created, nil
}

func (c *HTTPClient) Update(ctx context.Context, customer models.Customer) (models.Customer, error) {
	if customer.ID.IsNil() {
		return models.Customer{}, newError(ErrorInternal, OpUpdate, "update without id", nil)
	}
	body, _, err := c.do(ctx, OpUpdate, http.MethodPatch, c.recordURL(customer.ID), toWire(customer))
	if err != nil {
		return models.Customer{}, err
	}
	updated, err := c.decodeRecord(OpUpdate, body)
	if err != nil {
		return models.Customer{}, err
	}
	if updated.ID.IsNil() {
		updated.ID = customer.ID
	}
	return updated, nil
}

func (c *HTTPClient) Remove(ctx context.Context, customerID id.CustomerID) error {
	_, _, err := c.do(ctx, OpRemove, http.MethodDelete, c.recordURL(customerID), nil)
	return err
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	_, _, err := c.do(ctx, OpPing, http.MethodGet, c.baseURL+"?_limit=1", nil)
	return err
}

func (c *HTTPClient) recordURL(customerID id.CustomerID) string {
	return c.baseURL + "/" + url.PathEscape(customerID.String())
}

func (c *HTTPClient) decodeRecord(op string, body []byte) (models.Customer, error) {
	var w customerWire
	if err := json.Unmarshal(body, &w); err != nil {
		return models.Customer{}, c.fail(op, newError(ErrorBadData, op, "failed to parse response", err))
	}
	return w.toModel(), nil
}

// do executes one call. Success is any 2xx status; the body is not inspected
// to decide it.
func (c *HTTPClient) do(ctx context.Context, op, method, target string, payload any) (body []byte, header http.Header, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanGatewayCall, tracer.String(tracer.AttrOperation, op))
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveGatewayCall(op, time.Since(start).Seconds())
		}
		span.End(err)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		raw, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return nil, nil, c.fail(op, newError(ErrorInternal, op, "failed to marshal request", marshalErr))
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, nil, c.fail(op, newError(ErrorInternal, op, "failed to create request", err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, nil, c.fail(op, newError(ErrorTimeout, op, "request timeout", err))
		}
		return nil, nil, c.fail(op, newError(ErrorOutage, op, "failed to execute request", err))
	}
	defer resp.Body.Close()
	span.SetAttributes(tracer.Int(tracer.AttrStatusCode, resp.StatusCode))

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, nil, c.fail(op, newError(ErrorTimeout, op, "timeout reading response", err))
		}
		return nil, nil, c.fail(op, newError(ErrorBadData, op, "failed to read response", err))
	}

	if gwErr := classifyStatus(op, resp.StatusCode); gwErr != nil {
		return nil, nil, c.fail(op, gwErr)
	}
	return body, resp.Header, nil
}

func (c *HTTPClient) fail(op string, err *GatewayError) error {
	if c.metrics != nil {
		c.metrics.RecordGatewayError(op, string(err.Category))
	}
	c.logger.Warn("customer api call failed",
		"operation", op,
		"category", string(err.Category),
		"error", err,
	)
	return err
}

func classifyStatus(op string, status int) *GatewayError {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return newError(ErrorNotFound, op, "record not found", nil)
	case status == http.StatusTooManyRequests:
		return newError(ErrorRateLimited, op, "rate limit exceeded", nil)
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return newError(ErrorTimeout, op, fmt.Sprintf("upstream timeout: %d", status), nil)
	case status >= 500:
		return newError(ErrorOutage, op, fmt.Sprintf("api unavailable: %d", status), nil)
	default:
		return newError(ErrorContractMismatch, op, fmt.Sprintf("unexpected status: %d", status), nil)
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// regexpQuote escapes the characters json-server's _like regex would
// interpret in a masked CPF ("." and "-").
func regexpQuote(s string) string {
	r := strings.NewReplacer(".", `\.`, "-", `\-`)
	return r.Replace(s)
}
