package mongodb

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"time"

	"triage_server/core/port/out"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionTicketBodies = "ticket_bodies"

	// Only compress bodies larger than this
	compressionThreshold = 1024 // 1KB
)

// BodyAdapter implements out.BodyArchive using MongoDB. The relational
// ticket row only carries an excerpt; the full masked body lives here.
type BodyAdapter struct {
	collection *mongo.Collection
}

var _ out.BodyArchive = (*BodyAdapter)(nil)

// NewBodyAdapter creates a new MongoDB ticket body adapter.
func NewBodyAdapter(db *mongo.Database) *BodyAdapter {
	return &BodyAdapter{collection: db.Collection(collectionTicketBodies)}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *BodyAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ticket_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "archived_at", Value: 1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// ticketBodyDocument represents the MongoDB document structure.
type ticketBodyDocument struct {
	TicketID     string `bson:"ticket_id"`
	Body         []byte `bson:"body"`
	IsCompressed bool   `bson:"is_compressed"`

	OriginalSize int64     `bson:"original_size"`
	ArchivedAt   time.Time `bson:"archived_at"`
}

// SaveBody archives the full masked body for a ticket.
func (a *BodyAdapter) SaveBody(ctx context.Context, ticketID uuid.UUID, maskedBody string) error {
	raw := []byte(maskedBody)
	doc := ticketBodyDocument{
		TicketID:     ticketID.String(),
		Body:         raw,
		OriginalSize: int64(len(raw)),
		ArchivedAt:   time.Now().UTC(),
	}

	if doc.OriginalSize > compressionThreshold {
		compressed, err := compress(raw)
		if err != nil {
			return fmt.Errorf("failed to compress ticket body: %w", err)
		}
		doc.Body = compressed
		doc.IsCompressed = true
	}

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"ticket_id": ticketID.String()}

	if _, err := a.collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("failed to save ticket body: %w", err)
	}

	return nil
}

// GetBody retrieves the archived masked body for a ticket.
func (a *BodyAdapter) GetBody(ctx context.Context, ticketID uuid.UUID) (string, error) {
	var doc ticketBodyDocument
	filter := bson.M{"ticket_id": ticketID.String()}

	if err := a.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return "", nil
		}
		return "", fmt.Errorf("failed to get ticket body: %w", err)
	}

	body := doc.Body
	if doc.IsCompressed {
		var err error
		body, err = decompress(doc.Body)
		if err != nil {
			return "", fmt.Errorf("failed to decompress ticket body: %w", err)
		}
	}

	return string(body), nil
}

func compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)

	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}
