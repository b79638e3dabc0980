package repository

import (
	"context"
	"errors"
	"time"

	authdomain "taskboard-backend/internal/auth/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection         = "users"
	refreshTokensCollection = "refresh_tokens"
)

type mongoUserRepository struct {
	users  *mongo.Collection
	tokens *mongo.Collection
}

// NewMongoUserRepository stores users and refresh tokens in MongoDB.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{
		users:  db.Collection(usersCollection),
		tokens: db.Collection(refreshTokensCollection),
	}
}

// MigrateMongo creates the unique email index and the refresh token indexes.
func MigrateMongo(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = db.Collection(refreshTokensCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	})
	return err
}

func (r *mongoUserRepository) Create(ctx context.Context, user *authdomain.User) error {
	user.ID = uuid.New().String()
	user.Email = authdomain.NormalizeEmail(user.Email)
	now := time.Now().UTC().Truncate(time.Millisecond)
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := r.users.InsertOne(ctx, user)
	return err
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*authdomain.User, error) {
	var user authdomain.User
	if err := r.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*authdomain.User, error) {
	return r.findOne(ctx, bson.M{"email": authdomain.NormalizeEmail(email)})
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*authdomain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) Update(ctx context.Context, user *authdomain.User) error {
	user.Email = authdomain.NormalizeEmail(user.Email)
	user.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	_, err := r.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	return err
}

func (r *mongoUserRepository) ReplaceRefreshToken(ctx context.Context, token *authdomain.RefreshToken) error {
	_, err := r.tokens.DeleteMany(ctx, bson.M{
		"userId":    token.UserID,
		"expiresAt": bson.M{"$lt": time.Now()},
	})
	if err != nil {
		return err
	}
	_, err = r.tokens.InsertOne(ctx, token)
	return err
}

func (r *mongoUserRepository) FindRefreshToken(ctx context.Context, token string) (*authdomain.RefreshToken, error) {
	var rt authdomain.RefreshToken
	if err := r.tokens.FindOne(ctx, bson.M{"_id": token}).Decode(&rt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &rt, nil
}

func (r *mongoUserRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.tokens.DeleteOne(ctx, bson.M{"_id": token})
	return err
}
