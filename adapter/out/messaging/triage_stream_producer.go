// Package messaging provides message queue adapters.
package messaging

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"triage_server/core/port/out"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Stream names
const (
	StreamReviewRequest = "review:request"
)

// StreamNotifier implements out.ReviewNotifier using Redis Streams.
// Reviewer frontends consume the stream with a consumer group, so a
// published request survives consumer restarts.
type StreamNotifier struct {
	client *redis.Client
	log    zerolog.Logger
}

var _ out.ReviewNotifier = (*StreamNotifier)(nil)

// NewStreamNotifier creates a new StreamNotifier.
func NewStreamNotifier(client *redis.Client, log zerolog.Logger) *StreamNotifier {
	return &StreamNotifier{client: client, log: log}
}

// NotifyReviewer publishes the review request to the reviewer stream.
func (n *StreamNotifier) NotifyReviewer(ctx context.Context, req *out.ReviewRequest) error {
	if err := n.publish(ctx, StreamReviewRequest, req); err != nil {
		return err
	}
	n.log.Debug().
		Str("ticket_id", req.TicketID).
		Str("draft_id", req.DraftID).
		Str("intent", string(req.Intent)).
		Msg("review request published")
	return nil
}

// publish publishes a payload to a stream using go-redis.
func (n *StreamNotifier) publish(ctx context.Context, stream string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	err = n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		ID:     "*",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", stream, err)
	}

	return nil
}
