package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/escrowbot/dashboard-api/internal/core/domain"
)

const usersCollection = "users"

// UserRepository persists login profiles keyed by Discord id.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

// Upsert inserts the user on first login and overwrites username, avatar
// and last_login on every later one. The unique index on discord_id
// keeps the operation idempotent per identity.
func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"discord_id": user.DiscordID}
	update := bson.M{"$set": bson.M{
		"username":   user.Username,
		"avatar":     user.Avatar,
		"last_login": user.LastLogin,
	}}

	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(true)).Err()
	if err != nil && err != mongo.ErrNoDocuments {
		return fmt.Errorf("upsert user %s: %w: %w", user.DiscordID, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// EnsureIndexes creates the unique index on discord_id.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "discord_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
