package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smartcity/complaints-api/internal/core/domain"
	"github.com/smartcity/complaints-api/internal/core/ports"
)

const collectionUsers = "users"

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	State        string             `bson:"state"`
	District     string             `bson:"district"`
	City         string             `bson:"city"`
	CityKey      string             `bson:"city_key"`
	PhoneNumber  string             `bson:"phone_number"`
	RewardPoints int                `bson:"reward_points"`
	Role         string             `bson:"role"`
	AdminID      string             `bson:"admin_id,omitempty"`
	IsActive     bool               `bson:"is_active"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		State:        u.State,
		District:     u.District,
		City:         u.City,
		CityKey:      u.CityKey(),
		PhoneNumber:  u.PhoneNumber,
		RewardPoints: u.RewardPoints,
		Role:         string(u.Role),
		AdminID:      u.AdminID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID.Hex(),
		Username:     mu.Username,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		State:        mu.State,
		District:     mu.District,
		City:         mu.City,
		PhoneNumber:  mu.PhoneNumber,
		RewardPoints: mu.RewardPoints,
		Role:         domain.Role(mu.Role),
		AdminID:      mu.AdminID,
		IsActive:     mu.IsActive,
		CreatedAt:    mu.CreatedAt,
		UpdatedAt:    mu.UpdatedAt,
	}
}

// Create inserts a user. Unique indexes on username and email turn
// duplicates into domain.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoUser(user)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.col.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// List returns users matching any of the filter's clauses, oldest first.
func (r *UserRepository) List(ctx context.Context, f ports.UserFilter) ([]*domain.User, error) {
	var or bson.A
	if f.AdminID != "" {
		or = append(or, bson.M{"admin_id": f.AdminID})
	}
	if f.CityKey != "" {
		clause := bson.M{"city_key": f.CityKey}
		if f.Role != "" {
			clause["role"] = string(f.Role)
		}
		or = append(or, clause)
	}
	if len(or) == 0 {
		return []*domain.User{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"$or": or}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]*domain.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *UserRepository) IDsByCity(ctx context.Context, cityKey string) ([]string, error) {
	if cityKey == "" {
		return []string{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := r.col.Find(ctx, bson.M{"city_key": cityKey}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users by city: %w", err)
	}
	defer cur.Close(ctx)

	ids := []string{}
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode user id: %w", err)
		}
		ids = append(ids, doc.ID.Hex())
	}
	return ids, cur.Err()
}

// UpdateProfile applies the non-nil fields. Changing the city also moves the
// user's city_key and with it the admin jurisdiction they fall under.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, up ports.UserProfileUpdate) (*domain.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if up.Username != nil {
		set["username"] = *up.Username
	}
	if up.State != nil {
		set["state"] = *up.State
	}
	if up.District != nil {
		set["district"] = *up.District
	}
	if up.City != nil {
		set["city"] = *up.City
		set["city_key"] = domain.NormalizeCity(*up.City)
	}
	if up.PhoneNumber != nil {
		set["phone_number"] = *up.PhoneNumber
	}

	var mu mongoUser
	if err := r.findAndUpdate(ctx, id, bson.M{"$set": set}, &mu); err != nil {
		return nil, err
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.findAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	}}, nil)
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.findAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"is_active":  active,
		"updated_at": time.Now().UTC(),
	}}, nil)
}

// AddRewardPoints increments atomically so concurrent resolutions never
// lose credit.
func (r *UserRepository) AddRewardPoints(ctx context.Context, id string, points int) error {
	return r.findAndUpdate(ctx, id, bson.M{"$inc": bson.M{"reward_points": points}}, nil)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// findAndUpdate applies update to the user with the given id and decodes the
// updated document into out when out is non-nil.
func (r *UserRepository) findAndUpdate(ctx context.Context, id string, update bson.M, out *mongoUser) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts)
	if out == nil {
		var discard bson.Raw
		err = res.Decode(&discard)
	} else {
		err = res.Decode(out)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique identity indexes and the tenancy lookups.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "city_key", Value: 1}, {Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "admin_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
