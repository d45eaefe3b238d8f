package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smartcity/complaints-api/internal/core/domain"
	"github.com/smartcity/complaints-api/internal/core/ports"
)

const collectionCases = "cases"

type CaseRepository struct {
	col *mongo.Collection
}

func NewCaseRepository(db *mongo.Database) *CaseRepository {
	return &CaseRepository{col: db.Collection(collectionCases)}
}

type mongoCase struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Reference   string             `bson:"reference"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	Status      string             `bson:"status"`
	Priority    string             `bson:"priority"`
	Location    string             `bson:"location"`
	Latitude    string             `bson:"latitude"`
	Longitude   string             `bson:"longitude"`
	ImageURL    string             `bson:"image_url,omitempty"`
	UserID      string             `bson:"user_id"`
	AssignedTo  string             `bson:"assigned_to,omitempty"`
	AssignedBy  string             `bson:"assigned_by,omitempty"`
	AssignedAt  *time.Time         `bson:"assigned_at,omitempty"`
	ResolvedAt  *time.Time         `bson:"resolved_at,omitempty"`
	Version     int64              `bson:"version"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func toMongoCase(c *domain.Case) mongoCase {
	return mongoCase{
		Reference:   c.Reference,
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		Status:      string(c.Status),
		Priority:    string(c.Priority),
		Location:    c.Location,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		ImageURL:    c.ImageURL,
		UserID:      c.UserID,
		AssignedTo:  c.AssignedTo,
		AssignedBy:  c.AssignedBy,
		AssignedAt:  c.AssignedAt,
		ResolvedAt:  c.ResolvedAt,
		Version:     c.Version,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}

func (mc *mongoCase) toDomain() *domain.Case {
	return &domain.Case{
		ID:          mc.ID.Hex(),
		Reference:   mc.Reference,
		Title:       mc.Title,
		Description: mc.Description,
		Category:    mc.Category,
		Status:      domain.CaseStatus(mc.Status),
		Priority:    domain.CasePriority(mc.Priority),
		Location:    mc.Location,
		Latitude:    mc.Latitude,
		Longitude:   mc.Longitude,
		ImageURL:    mc.ImageURL,
		UserID:      mc.UserID,
		AssignedTo:  mc.AssignedTo,
		AssignedBy:  mc.AssignedBy,
		AssignedAt:  mc.AssignedAt,
		ResolvedAt:  mc.ResolvedAt,
		Version:     mc.Version,
		CreatedAt:   mc.CreatedAt,
		UpdatedAt:   mc.UpdatedAt,
	}
}

func (r *CaseRepository) Create(ctx context.Context, c *domain.Case) (*domain.Case, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoCase(c)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("insert case: %w", domain.ErrDuplicateReference)
		}
		return nil, fmt.Errorf("insert case: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CaseRepository) FindByID(ctx context.Context, id string) (*domain.Case, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCaseNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoCase
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, fmt.Errorf("find case: %w", err)
	}
	return mc.toDomain(), nil
}

// listFilter translates the port filter into a Mongo query document.
func listFilter(f ports.ListCasesFilter) bson.M {
	filter := bson.M{}
	if f.ReporterID != "" {
		filter["user_id"] = f.ReporterID
	}
	if f.ReporterIDs != nil {
		// An empty $in matches nothing, which is the intended scope.
		filter["user_id"] = bson.M{"$in": f.ReporterIDs}
	}
	if f.AssignedTo != "" {
		filter["assigned_to"] = f.AssignedTo
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"location": pattern},
		}
	}
	return filter
}

// List returns a page of matching cases, newest first, and the total count.
func (r *CaseRepository) List(ctx context.Context, f ports.ListCasesFilter) ([]*domain.Case, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := listFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count cases: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list cases: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoCase
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode cases: %w", err)
	}
	items := make([]*domain.Case, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].toDomain())
	}
	return items, total, nil
}

func (r *CaseRepository) Assign(ctx context.Context, id string, a domain.Assignment, expectedVersion int64) (*domain.Case, error) {
	at := a.At.UTC()
	return r.update(ctx, id, expectedVersion, bson.M{
		"assigned_to": a.EmployeeID,
		"assigned_by": a.AdminID,
		"assigned_at": at,
		"updated_at":  at,
	})
}

// UpdateStatus leaves resolved_at untouched unless the change carries one.
func (r *CaseRepository) UpdateStatus(ctx context.Context, id string, change domain.StatusChange, expectedVersion int64) (*domain.Case, error) {
	set := bson.M{
		"status":     string(change.Status),
		"updated_at": change.At.UTC(),
	}
	if change.ResolvedAt != nil {
		set["resolved_at"] = change.ResolvedAt.UTC()
	}
	return r.update(ctx, id, expectedVersion, set)
}

// update applies set and bumps the version in one atomic write. With a
// non-zero expectedVersion the write only matches that version; a miss on an
// existing case is reported as domain.ErrStaleVersion.
func (r *CaseRepository) update(ctx context.Context, id string, expectedVersion int64, set bson.M) (*domain.Case, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCaseNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid}
	if expectedVersion != 0 {
		filter["version"] = expectedVersion
	}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mc mongoCase
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mc)
	if err == nil {
		return mc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update case: %w", err)
	}
	if expectedVersion == 0 {
		return nil, domain.ErrCaseNotFound
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("check case: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrCaseNotFound
	}
	return nil, domain.ErrStaleVersion
}

// EnsureIndexes creates the indexes backing the scoped list queries.
func (r *CaseRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "reference", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "assigned_to", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
