// Package registry calls the external government-registry verification
// provider. It implements verify.Provider.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/vet/internal/verify"
)

const (
	requestTimeout  = 30 * time.Second
	maxResponseSize = 1 << 20 // 1 MiB
)

// endpointPaths maps each check type to its provider endpoint.
var endpointPaths = map[verify.CheckType]string{
	verify.TypeGST:     "/api/v1/gst/verify",
	verify.TypePAN:     "/api/v1/pan/verify",
	verify.TypeAadhaar: "/api/v1/aadhaar/verify",
	verify.TypeBank:    "/api/v1/bank/verify",
	verify.TypeCIN:     "/api/v1/cin/verify",
	verify.TypeDIN:     "/api/v1/din/verify",
}

// payloadKeys maps each check type to the request field carrying the number.
var payloadKeys = map[verify.CheckType]string{
	verify.TypeGST:     "gstin",
	verify.TypePAN:     "pan",
	verify.TypeAadhaar: "aadhaar_number",
	verify.TypeBank:    "account_number",
	verify.TypeCIN:     "cin",
	verify.TypeDIN:     "din",
}

// Client is an authenticated HTTP client for the verification provider.
type Client struct {
	baseURL    string
	tokenID    string
	userID     string
	password   string
	httpClient *http.Client
}

// New creates a provider client. baseURL has no trailing slash.
func New(baseURL, tokenID, userID, password string) *Client {
	return &Client{
		baseURL:    baseURL,
		tokenID:    tokenID,
		userID:     userID,
		password:   password,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Check runs one registry check. Credential rejections surface as
// verify.ErrAuthentication; other provider failures as *verify.ProviderError.
func (c *Client) Check(ctx context.Context, t verify.CheckType, number string) (*verify.ProviderResult, error) {
	path, ok := endpointPaths[t]
	if !ok {
		return nil, verify.ErrUnsupportedType
	}

	reqBody, err := json.Marshal(map[string]string{payloadKeys[t]: number})
	if err != nil {
		return nil, fmt.Errorf("registry: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("registry: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("TokenID", c.tokenID)
	httpReq.Header.Set("ApiUserID", c.userID)
	httpReq.Header.Set("ApiPassword", c.password)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &verify.ProviderError{StatusCode: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &verify.ProviderError{StatusCode: resp.StatusCode, Body: err.Error()}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, verify.ErrAuthentication
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &verify.ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return &verify.ProviderResult{
		Request:  reqBody,
		Response: body,
		Status:   responseStatus(body),
	}, nil
}

// responseStatus pulls the provider's status field, defaulting to COMPLETED
// for success payloads that omit one.
func responseStatus(body []byte) string {
	var envelope struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Status != "" {
		return envelope.Status
	}
	return "COMPLETED"
}
