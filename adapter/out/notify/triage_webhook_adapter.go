// Package notify delivers review requests to external reviewer tools.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"triage_server/core/port/out"
	"triage_server/pkg/httputil"
)

// WebhookNotifier implements out.ReviewNotifier by POSTing the review
// request to a configured endpoint, typically a support-desk inbox or
// chat integration.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

var _ out.ReviewNotifier = (*WebhookNotifier)(nil)

// NewWebhookNotifier creates a new WebhookNotifier.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: httputil.NewOptimizedClient(httputil.WebhookClientConfig()),
	}
}

// NotifyReviewer delivers one review request. Non-2xx responses count
// as delivery failures so the caller's retry schedule kicks in.
func (n *WebhookNotifier) NotifyReviewer(ctx context.Context, req *out.ReviewRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal review request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to deliver review webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("review webhook returned status %d", resp.StatusCode)
	}

	return nil
}
