package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/connex/contact-manager/internal/core/domain"
)

const collectionContactEvents = "contact_events"

// ContactEventRepository stores contact events in MongoDB.
type ContactEventRepository struct {
	col *mongo.Collection
}

// NewContactEventRepository creates a new ContactEventRepository.
func NewContactEventRepository(db *mongo.Database) *ContactEventRepository {
	return &ContactEventRepository{col: db.Collection(collectionContactEvents)}
}

type contactEventDocument struct {
	ContactID  string    `bson:"contact_id"`
	Action     string    `bson:"action"`
	Email      string    `bson:"email,omitempty"`
	OccurredAt time.Time `bson:"occurred_at"`
	RequestID  string    `bson:"request_id,omitempty"`
	RecordedAt time.Time `bson:"recorded_at"`
}

// Insert persists a contact event to the contact_events audit collection.
func (r *ContactEventRepository) Insert(ctx context.Context, e *domain.ContactEvent) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := contactEventDocument{
		ContactID:  e.ContactID,
		Action:     string(e.Action),
		Email:      e.Email,
		OccurredAt: e.OccurredAt.UTC(),
		RequestID:  e.RequestID,
		RecordedAt: time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert contact event: %w", err)
	}
	return nil
}

// ListByContact returns the events recorded for contactID, newest first.
func (r *ContactEventRepository) ListByContact(ctx context.Context, contactID string) ([]*domain.ContactEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"contact_id": contactID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find contact events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []contactEventDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode contact events: %w", err)
	}

	out := make([]*domain.ContactEvent, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.ContactEvent{
			ContactID:  d.ContactID,
			Action:     domain.ContactAction(d.Action),
			Email:      d.Email,
			OccurredAt: d.OccurredAt.UTC(),
			RequestID:  d.RequestID,
		})
	}
	return out, nil
}

// EnsureIndexes creates the lookup index for per-contact history.
func (r *ContactEventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "contact_id", Value: 1}, {Key: "occurred_at", Value: -1}},
	})
	return err
}
