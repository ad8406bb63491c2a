package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/twokhq/realtime-core/internal/domain"
)

// HTTPMailer delivers mail through the transactional mail provider's
// JSON API. The base URL is injected from config so tests can point to a
// local mock.
type HTTPMailer struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPMailer(baseURL, apiKey string, timeout time.Duration) *HTTPMailer {
	return &HTTPMailer{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts the mail to the provider and treats any 2xx response as
// accepted. Errors are transient from the caller's perspective; the mail
// queue handles the bounded retry.
func (m *HTTPMailer) Send(ctx context.Context, job domain.MailJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected mail provider status: %d", resp.StatusCode)
	}
	return nil
}

// compile-time check that HTTPMailer implements Mailer
var _ Mailer = (*HTTPMailer)(nil)
