package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/videotube/videotube-api/internal/core/domain"
)

type SubscriptionRepository struct {
	col *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{col: db.Collection(collectionSubscriptions)}
}

type mongoSubscription struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Subscriber primitive.ObjectID `bson:"subscriber"`
	Channel    primitive.ObjectID `bson:"channel"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// Toggle deletes the subscriber->channel edge if it exists and inserts it
// otherwise. A concurrent insert of the same edge is treated as subscribed.
func (r *SubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	subscriber, err := objectID(subscriberID)
	if err != nil {
		return false, domain.ErrUserNotFound
	}
	channel, err := objectID(channelID)
	if err != nil {
		return false, domain.ErrChannelNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"subscriber": subscriber, "channel": channel})
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	now := time.Now().UTC()
	_, err = r.col.InsertOne(ctx, mongoSubscription{
		Subscriber: subscriber,
		Channel:    channel,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return false, fmt.Errorf("insert subscription: %w", err)
	}
	return true, nil
}
