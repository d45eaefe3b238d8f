package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smartcity/complaints-api/internal/core/domain"
)

const collectionCaseEvents = "case_events"

// CaseEventRepository persists the case audit log.
type CaseEventRepository struct {
	col *mongo.Collection
}

func NewCaseEventRepository(db *mongo.Database) *CaseEventRepository {
	return &CaseEventRepository{col: db.Collection(collectionCaseEvents)}
}

type mongoCaseEvent struct {
	ID          string    `bson:"_id"`
	CaseID      string    `bson:"case_id"`
	Kind        string    `bson:"kind"`
	ActorID     string    `bson:"actor_id"`
	FromStatus  string    `bson:"from_status,omitempty"`
	ToStatus    string    `bson:"to_status,omitempty"`
	AssignedTo  string    `bson:"assigned_to,omitempty"`
	Version     int64     `bson:"version"`
	OccurredAt  time.Time `bson:"occurred_at"`
	ProcessedAt time.Time `bson:"processed_at"`
}

// Insert appends an event. Events carry their own id, so a retried insert of
// the same event is a no-op rather than a duplicate.
func (r *CaseEventRepository) Insert(ctx context.Context, e *domain.CaseEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoCaseEvent{
		ID:          e.ID,
		CaseID:      e.CaseID,
		Kind:        string(e.Kind),
		ActorID:     e.ActorID,
		FromStatus:  string(e.FromStatus),
		ToStatus:    string(e.ToStatus),
		AssignedTo:  e.AssignedTo,
		Version:     e.Version,
		OccurredAt:  e.OccurredAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert case event: %w", err)
	}
	return nil
}

func (r *CaseEventRepository) ListByCase(ctx context.Context, caseID string) ([]*domain.CaseEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "version", Value: 1}, {Key: "occurred_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"case_id": caseID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list case events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoCaseEvent
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode case events: %w", err)
	}
	events := make([]*domain.CaseEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, &domain.CaseEvent{
			ID:         d.ID,
			CaseID:     d.CaseID,
			Kind:       domain.CaseEventKind(d.Kind),
			ActorID:    d.ActorID,
			FromStatus: domain.CaseStatus(d.FromStatus),
			ToStatus:   domain.CaseStatus(d.ToStatus),
			AssignedTo: d.AssignedTo,
			Version:    d.Version,
			OccurredAt: d.OccurredAt,
		})
	}
	return events, nil
}

func (r *CaseEventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "case_id", Value: 1}, {Key: "version", Value: 1}},
	})
	return err
}
