package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rjtc/pms-sync/internal/core/domain"
)

const credentialsCollection = "credentials"

// Credential is a password sign-in record. It lives alongside the Users
// documents but is never exposed through the RemoteStore path space.
type Credential struct {
	UserID       string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
}

// CredentialsRepository persists password credentials.
type CredentialsRepository struct {
	coll *mongo.Collection
}

func NewCredentialsRepository(db *mongo.Database) *CredentialsRepository {
	return &CredentialsRepository{coll: db.Collection(credentialsCollection)}
}

type mongoCredential struct {
	ID           string `bson:"_id"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"password_hash"`
	Name         string `bson:"name"`
	CreatedAt    int64  `bson:"created_at"`
}

// Create inserts a new credential. An empty UserID gets a generated one.
func (r *CredentialsRepository) Create(ctx context.Context, c *Credential) (*Credential, error) {
	if c.UserID == "" {
		c.UserID = primitive.NewObjectID().Hex()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	doc := mongoCredential{
		ID:           c.UserID,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Name:         c.Name,
		CreatedAt:    c.CreatedAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert credential: %w", err)
	}
	return c, nil
}

func (r *CredentialsRepository) FindByEmail(ctx context.Context, email string) (*Credential, error) {
	var mc mongoCredential
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}

	return &Credential{
		UserID:       mc.ID,
		Email:        mc.Email,
		PasswordHash: mc.PasswordHash,
		Name:         mc.Name,
		CreatedAt:    time.Unix(mc.CreatedAt, 0).UTC(),
	}, nil
}

// EnsureIndexes creates the unique email index used for duplicate detection.
func (r *CredentialsRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
