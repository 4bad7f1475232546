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

	"github.com/staffhub/hr-portal/internal/core/domain"
	"github.com/staffhub/hr-portal/internal/core/ports"
)

const collectionCredentials = "credentials"

// CredentialRepository implements ports.CredentialRepository using MongoDB.
type CredentialRepository struct {
	col *mongo.Collection
}

func NewCredentialRepository(db *mongo.Database) *CredentialRepository {
	return &CredentialRepository{col: db.Collection(collectionCredentials)}
}

type mongoCredential struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	Profile      domain.Profile     `bson:"profile"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (mc *mongoCredential) toDomain() *domain.Credential {
	return &domain.Credential{
		ID:           mc.ID.Hex(),
		Email:        mc.Email,
		PasswordHash: mc.PasswordHash,
		Role:         mc.Role,
		Profile:      mc.Profile,
		CreatedAt:    mc.CreatedAt,
		UpdatedAt:    mc.UpdatedAt,
	}
}

// Create inserts a new credential document. A duplicate email violates the
// unique index and maps to domain.ErrDuplicateEmail.
func (r *CredentialRepository) Create(ctx context.Context, c *domain.Credential) (*domain.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoCredential{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Role:         c.Role,
		Profile:      c.Profile,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert credential: %w", err)
	}

	created := *c
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *CredentialRepository) FindByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoCredential
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return mc.toDomain(), nil
}

func (r *CredentialRepository) FindByID(ctx context.Context, id string) (*domain.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCredentialNotFound
	}

	var mc mongoCredential
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return mc.toDomain(), nil
}

// Update applies a partial merge: only the provided fields are written.
func (r *CredentialRepository) Update(ctx context.Context, id string, in ports.UpdateCredentialInput) (*domain.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCredentialNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if in.Email != nil {
		set["email"] = *in.Email
	}
	if in.Role != nil {
		set["role"] = *in.Role
	}
	if in.Name != nil {
		set["profile.name"] = *in.Name
	}
	if in.Department != nil {
		set["profile.department"] = *in.Department
	}
	if in.Position != nil {
		set["profile.position"] = *in.Position
	}
	if in.Phone != nil {
		set["profile.phone"] = *in.Phone
	}
	if in.Address != nil {
		set["profile.address"] = *in.Address
	}
	if in.HireDate != nil {
		set["profile.hire_date"] = *in.HireDate
	}
	if in.BirthDate != nil {
		set["profile.birth_date"] = *in.BirthDate
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mc mongoCredential
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&mc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCredentialNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update credential: %w", err)
	}
	return mc.toDomain(), nil
}

func (r *CredentialRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrCredentialNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCredentialNotFound
	}
	return nil
}

// List returns a page of credentials ordered by creation time, plus the total count.
func (r *CredentialRepository) List(ctx context.Context, page, limit int) ([]*domain.Credential, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count credentials: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list credentials: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*domain.Credential
	for cursor.Next(ctx) {
		var mc mongoCredential
		if err := cursor.Decode(&mc); err != nil {
			return nil, 0, fmt.Errorf("decode credential: %w", err)
		}
		out = append(out, mc.toDomain())
	}
	return out, total, cursor.Err()
}

// SetPasswordHashIfEmpty writes the bootstrap hash conditionally on the
// stored hash still being the empty sentinel, so only one first login wins.
func (r *CredentialRepository) SetPasswordHashIfEmpty(ctx context.Context, id, hash string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, domain.ErrCredentialNotFound
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "password_hash": ""},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, fmt.Errorf("bootstrap password: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// EnsureIndexes creates the unique email index on the credentials collection.
func (r *CredentialRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
