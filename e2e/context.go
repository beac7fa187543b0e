package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"
	"time"

	id "github.com/pk-mender/desafiojr/pkg/domain"
)

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	SessionID  string
	CustomerID string
	CPF        string

	// created customers are removed after the scenario
	created []string
}

// NewTestContext creates a new test context
func NewTestContext() *TestContext {
	return &TestContext{
		BaseURL: baseURL(),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func baseURL() string {
	if u := os.Getenv("E2E_BASE_URL"); u != "" {
		return strings.TrimRight(u, "/")
	}
	return "http://localhost:8080"
}

// FreshCPF generates a valid CPF unlikely to collide with stored records.
func FreshCPF() string {
	base := fmt.Sprintf("%09d", rand.IntN(1_000_000_000))
	cpf := id.CompleteCPF(base)
	if !id.IsValidCPF(cpf.String()) {
		// repeated-digit bases are rejected; try again
		return FreshCPF()
	}
	return cpf.Formatted()
}

// POST makes a POST request and stores the response
func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

// DELETE makes a DELETE request and stores the response
func (tc *TestContext) DELETE(path string) error {
	return tc.do(http.MethodDelete, path, nil)
}

func (tc *TestContext) do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// Field walks a dotted path through the JSON response, e.g. "form.values.cpf".
func (tc *TestContext) Field(path string) (any, error) {
	var data any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	for _, key := range strings.Split(path, ".") {
		obj, ok := data.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %s: %q is not an object", path, key)
		}
		if data, ok = obj[key]; !ok {
			return nil, fmt.Errorf("field %s not found in response: %s", path, tc.LastResponseBody)
		}
	}
	return data, nil
}

// FieldString is Field rendered with fmt.Sprint.
func (tc *TestContext) FieldString(path string) (string, error) {
	v, err := tc.Field(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

// Status returns the last response status or 0.
func (tc *TestContext) Status() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) logFailure(scenario string) {
	fmt.Fprintf(os.Stderr, "scenario %q failed; last response (%d): %s\n", scenario, tc.Status(), tc.LastResponseBody)
}

// Cleanup deletes every customer the scenario created.
func (tc *TestContext) Cleanup() {
	for _, customerID := range tc.created {
		_ = tc.DELETE("/customers/" + customerID + "?confirm=true") //nolint:errcheck // best-effort cleanup
	}
	tc.created = nil
}
