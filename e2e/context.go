// Package e2e drives a running mintgate server through its HTTP API.
package e2e

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// TestContext holds one scenario's HTTP client and wallet state.
type TestContext struct {
	baseURL string
	client  *http.Client

	key         *ecdsa.PrivateKey
	accessToken string
	values      map[string]string

	lastStatus  int
	lastBody    []byte
	lastHeaders http.Header
	lastRequest func() error
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		values:  make(map[string]string),
	}
}

// Reset clears state between scenarios.
func (tc *TestContext) Reset() {
	tc.key = nil
	tc.accessToken = ""
	tc.values = make(map[string]string)
	tc.lastStatus, tc.lastBody, tc.lastHeaders, tc.lastRequest = 0, nil, nil, nil
}

func (tc *TestContext) Ping(ctx context.Context) error {
	if err := tc.do(ctx, http.MethodGet, "/health", nil, false); err != nil {
		return err
	}
	if tc.lastStatus != http.StatusOK {
		return fmt.Errorf("health returned %d: %s", tc.lastStatus, tc.lastBody)
	}
	return nil
}

func (tc *TestContext) NewWallet() error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	tc.key = key
	return nil
}

func (tc *TestContext) Key() *ecdsa.PrivateKey { return tc.key }

func (tc *TestContext) Address() common.Address {
	if tc.key == nil {
		return common.Address{}
	}
	return crypto.PubkeyToAddress(tc.key.PublicKey)
}

func (tc *TestContext) AccessToken() string         { return tc.accessToken }
func (tc *TestContext) SetAccessToken(token string) { tc.accessToken = token }

// Remember stores a value, such as a created collection id, for later steps.
func (tc *TestContext) Remember(name, value string) { tc.values[name] = value }

// Expand replaces {name} placeholders with remembered values.
func (tc *TestContext) Expand(s string) string {
	for k, v := range tc.values {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return strings.ReplaceAll(s, "{me}", tc.Address().Hex())
}

func (tc *TestContext) GET(ctx context.Context, path string) error {
	return tc.record(func() error { return tc.do(ctx, http.MethodGet, path, nil, false) })
}

func (tc *TestContext) POST(ctx context.Context, path string, body any) error {
	return tc.record(func() error { return tc.do(ctx, http.MethodPost, path, body, false) })
}

// Authed sends a request carrying the current bearer token.
func (tc *TestContext) Authed(ctx context.Context, method, path string, body any) error {
	return tc.record(func() error { return tc.do(ctx, method, path, body, true) })
}

// Replay sends the previous request again.
func (tc *TestContext) Replay() error {
	if tc.lastRequest == nil {
		return fmt.Errorf("no request to replay")
	}
	return tc.lastRequest()
}

func (tc *TestContext) Status() int            { return tc.lastStatus }
func (tc *TestContext) Body() []byte           { return tc.lastBody }
func (tc *TestContext) Header(k string) string { return tc.lastHeaders.Get(k) }

// Field returns a top-level field of the last JSON response.
func (tc *TestContext) Field(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w: %s", err, tc.lastBody)
	}
	v, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response: %s", field, tc.lastBody)
	}
	return v, nil
}

func (tc *TestContext) record(fn func() error) error {
	tc.lastRequest = fn
	return fn()
}

func (tc *TestContext) do(ctx context.Context, method, path string, body any, authed bool) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authed && tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastHeaders = resp.Header
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}
