package database

import (
	"context"
	"fmt"
	"time"

	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository stores user documents
type MongoUserRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoUserRepository creates the repository and ensures a unique email index
func NewMongoUserRepository(db *MongoDB) *MongoUserRepository {
	collection := db.GetCollection("users")
	logger := logging.WithPrefix("mongo_user_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Errorf("Failed to create index on users collection: %v", err)
	}

	return &MongoUserRepository{
		collection: collection,
		logger:     logger,
	}
}

// CreateUser inserts a new user
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}
	r.logger.Infof("Created user %s (%s)", user.DisplayName, user.ID)
	return nil
}

// GetUserByID returns a user by ID, or nil when absent
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user %s: %w", id, err)
	}
	return &user, nil
}

// GetUserByEmail returns a user by email, or nil when absent
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// GetAllUsers returns every user
func (r *MongoUserRepository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// UpdateLegacyStats refreshes the flat stats map on the user document.
// These fields are superseded by the hierarchical aggregates but old
// readers still consume them.
func (r *MongoUserRepository) UpdateLegacyStats(ctx context.Context, userID string, year int, season, allTime models.SeasonRecord) error {
	now := time.Now()
	update := bson.M{"$set": bson.M{
		fmt.Sprintf("stats.season%d", year): season,
		"stats.allTime":                     allTime,
		"last_stats_update":                 now,
	}}

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		return fmt.Errorf("failed to update legacy stats for user %s: %w", userID, err)
	}
	return nil
}
