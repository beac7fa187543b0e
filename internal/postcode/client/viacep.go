// Package client queries the ViaCEP postal code API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pk-mender/desafiojr/internal/postcode"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ViaCEP resolves a CEP with GET {baseURL}/{digits}/json/.
type ViaCEP struct {
	baseURL string
	client  HTTPDoer
	timeout time.Duration
}

// Option configures the ViaCEP client.
type Option func(*ViaCEP)

func WithHTTPDoer(d HTTPDoer) Option {
	return func(c *ViaCEP) { c.client = d }
}

func WithTimeout(d time.Duration) Option {
	return func(c *ViaCEP) { c.timeout = d }
}

func New(baseURL string, opts ...Option) *ViaCEP {
	c := &ViaCEP{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	return c
}

// viaCEPResponse is the API body. A lookup miss answers 200 with {"erro": true}.
type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       any    `json:"erro"`
}

// notFound reports the miss marker. Older deployments send the boolean,
// newer ones the string "true".
func (r viaCEPResponse) notFound() bool {
	switch v := r.Erro.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

// Lookup resolves eight digits into an address, ErrNotFound on a miss.
func (c *ViaCEP) Lookup(ctx context.Context, digits string) (postcode.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+digits+"/json/", nil)
	if err != nil {
		return postcode.Address{}, fmt.Errorf("create postcode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return postcode.Address{}, fmt.Errorf("postcode lookup timeout: %w", err)
		}
		return postcode.Address{}, fmt.Errorf("postcode lookup: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return postcode.Address{}, fmt.Errorf("read postcode response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return postcode.Address{}, postcode.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return postcode.Address{}, fmt.Errorf("postcode lookup: unexpected status %d", resp.StatusCode)
	}

	var parsed viaCEPResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return postcode.Address{}, fmt.Errorf("decode postcode response: %w", err)
	}
	if parsed.notFound() {
		return postcode.Address{}, postcode.ErrNotFound
	}

	return postcode.Address{
		PostalCode: postcode.Format(digits),
		Street:     parsed.Logradouro,
		District:   parsed.Bairro,
		City:       parsed.Localidade,
		State:      parsed.UF,
	}, nil
}
