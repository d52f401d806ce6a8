package entitlements

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
)

// SandboxProvider approves every purchase. It is wired in DEV_MODE only.
type SandboxProvider struct{}

// Purchase implements BillingProvider.
func (SandboxProvider) Purchase(_ context.Context, skuToken string) (PurchaseResult, error) {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)
	return PurchaseResult{
		Success:       true,
		PurchaseToken: "sandbox." + skuToken + "." + id.String(),
	}, nil
}

// HTTPProvider forwards purchases to an HTTP billing gateway that accepts
// {"sku_token": "..."} and answers with a PurchaseResult document.
type HTTPProvider struct {
	URL    string
	Client *http.Client
}

// NewHTTPProvider creates a provider with a bounded request timeout.
func NewHTTPProvider(url string) *HTTPProvider {
	return &HTTPProvider{
		URL:    url,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Purchase implements BillingProvider.
func (p *HTTPProvider) Purchase(ctx context.Context, skuToken string) (PurchaseResult, error) {
	body, err := json.Marshal(map[string]string{"sku_token": skuToken})
	if err != nil {
		return PurchaseResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return PurchaseResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return PurchaseResult{}, err
	}
	defer resp.Body.Close()

	var res PurchaseResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return PurchaseResult{}, fmt.Errorf("decode billing response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 {
		res.Success = false
		if res.Error == "" {
			res.Error = fmt.Sprintf("billing gateway returned status %d", resp.StatusCode)
		}
	}

	return res, nil
}
