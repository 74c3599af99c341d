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

	"github.com/videotube/videotube-api/internal/core/domain"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Username     string               `bson:"username"`
	Email        string               `bson:"email"`
	FullName     string               `bson:"fullName"`
	Avatar       string               `bson:"avatar"`
	CoverImage   string               `bson:"coverImage,omitempty"`
	WatchHistory []primitive.ObjectID `bson:"watchHistory"`
	Password     string               `bson:"password"`
	RefreshToken string               `bson:"refreshToken,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

func (u *mongoUser) toDomain() *domain.User {
	history := make([]string, 0, len(u.WatchHistory))
	for _, id := range u.WatchHistory {
		history = append(history, id.Hex())
	}
	return &domain.User{
		ID:           u.ID.Hex(),
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		Avatar:       u.Avatar,
		CoverImage:   u.CoverImage,
		WatchHistory: history,
		PasswordHash: u.Password,
		RefreshToken: u.RefreshToken,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	doc := mongoUser{
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName,
		Avatar:       user.Avatar,
		CoverImage:   user.CoverImage,
		WatchHistory: []primitive.ObjectID{},
		Password:     user.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	or := bson.A{}
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"$or": or})
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

func (r *UserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"refreshToken": token}})
}

func (r *UserRepository) RotateRefreshToken(ctx context.Context, id, current, next string) error {
	oid, err := objectID(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "refreshToken": current},
		bson.M{"$set": bson.M{"refreshToken": next, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRefreshTokenExpired
	}
	return nil
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{"$unset": bson.M{"refreshToken": 1}})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"password": passwordHash}})
}

// updateOne applies update to the user and stamps updatedAt.
func (r *UserRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	oid, err := objectID(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, withUpdatedAt(update))
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateDetails(ctx context.Context, id, fullName, email string) (*domain.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"fullName": fullName, "email": email})
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id, url string) (*domain.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"avatar": url})
}

func (r *UserRepository) UpdateCoverImage(ctx context.Context, id, url string) (*domain.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"coverImage": url})
}

func (r *UserRepository) findOneAndSet(ctx context.Context, id string, set bson.M) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mu mongoUser
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, withUpdatedAt(bson.M{"$set": set}), opts).Decode(&mu)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, domain.ErrUserNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrUserExists
	case err != nil:
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

func withUpdatedAt(update bson.M) bson.M {
	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
	}
	set["updatedAt"] = time.Now().UTC()
	update["$set"] = set
	return update
}

type mongoChannel struct {
	ID                primitive.ObjectID `bson:"_id"`
	Username          string             `bson:"username"`
	FullName          string             `bson:"fullName"`
	Email             string             `bson:"email"`
	Avatar            string             `bson:"avatar"`
	CoverImage        string             `bson:"coverImage"`
	SubscribersCount  int                `bson:"subscribersCount"`
	SubscribedToCount int                `bson:"subscribedToCount"`
	IsSubscribed      bool               `bson:"isSubscribed"`
}

func (r *UserRepository) ChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var viewer interface{}
	if oid, err := objectID(viewerID); err == nil {
		viewer = oid
	}

	cur, err := r.col.Aggregate(ctx, channelProfilePipeline(username, viewer))
	if err != nil {
		return nil, fmt.Errorf("channel profile: %w", err)
	}
	var rows []mongoChannel
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("channel profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrChannelNotFound
	}

	c := rows[0]
	return &domain.ChannelProfile{
		ID:                c.ID.Hex(),
		Username:          c.Username,
		FullName:          c.FullName,
		Email:             c.Email,
		Avatar:            c.Avatar,
		CoverImage:        c.CoverImage,
		SubscribersCount:  c.SubscribersCount,
		SubscribedToCount: c.SubscribedToCount,
		IsSubscribed:      c.IsSubscribed,
	}, nil
}

// channelProfilePipeline matches the channel by username and joins the
// subscription edges pointing at it and out of it. A nil viewer is never
// subscribed.
func channelProfilePipeline(username string, viewer interface{}) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": username}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionSubscriptions,
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionSubscriptions,
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribedTo",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"subscribersCount":  bson.M{"$size": "$subscribers"},
			"subscribedToCount": bson.M{"$size": "$subscribedTo"},
			"isSubscribed": bson.M{"$cond": bson.M{
				"if":   bson.M{"$in": bson.A{viewer, "$subscribers.subscriber"}},
				"then": true,
				"else": false,
			}},
		}}},
		{{Key: "$project", Value: bson.M{
			"username":          1,
			"fullName":          1,
			"email":             1,
			"avatar":            1,
			"coverImage":        1,
			"subscribersCount":  1,
			"subscribedToCount": 1,
			"isSubscribed":      1,
		}}},
	}
}

type mongoVideo struct {
	ID          primitive.ObjectID `bson:"_id"`
	VideoFile   string             `bson:"videoFile"`
	Thumbnail   string             `bson:"thumbnail"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Duration    float64            `bson:"duration"`
	Views       int64              `bson:"views"`
	IsPublished bool               `bson:"isPublished"`
	Owner       *struct {
		ID       primitive.ObjectID `bson:"_id"`
		Username string             `bson:"username"`
		FullName string             `bson:"fullName"`
		Avatar   string             `bson:"avatar"`
	} `bson:"owner,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (v mongoVideo) toDomain() domain.WatchedVideo {
	out := domain.WatchedVideo{
		ID:          v.ID.Hex(),
		VideoFile:   v.VideoFile,
		Thumbnail:   v.Thumbnail,
		Title:       v.Title,
		Description: v.Description,
		Duration:    v.Duration,
		Views:       v.Views,
		IsPublished: v.IsPublished,
		CreatedAt:   v.CreatedAt,
	}
	if v.Owner != nil {
		out.Owner = &domain.VideoOwner{
			ID:       v.Owner.ID.Hex(),
			Username: v.Owner.Username,
			FullName: v.Owner.FullName,
			Avatar:   v.Owner.Avatar,
		}
	}
	return out
}

type watchHistoryRow struct {
	WatchHistory  []primitive.ObjectID `bson:"watchHistory"`
	WatchedVideos []mongoVideo         `bson:"watchedVideos"`
}

func (r *UserRepository) WatchHistory(ctx context.Context, id string) ([]domain.WatchedVideo, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, watchHistoryPipeline(oid))
	if err != nil {
		return nil, fmt.Errorf("watch history: %w", err)
	}
	var rows []watchHistoryRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("watch history: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrUserNotFound
	}

	videos := orderByHistory(rows[0].WatchHistory, rows[0].WatchedVideos)
	out := make([]domain.WatchedVideo, 0, len(videos))
	for _, v := range videos {
		out = append(out, v.toDomain())
	}
	return out, nil
}

// watchHistoryPipeline joins the user's watch history with the videos
// collection and each video with a projection of its owner.
func watchHistoryPipeline(userID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": userID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionVideos,
			"localField":   "watchHistory",
			"foreignField": "_id",
			"as":           "watchedVideos",
			"pipeline": bson.A{
				bson.M{"$lookup": bson.M{
					"from":         collectionUsers,
					"localField":   "owner",
					"foreignField": "_id",
					"as":           "owner",
					"pipeline": bson.A{
						bson.M{"$project": bson.M{"username": 1, "fullName": 1, "avatar": 1}},
					},
				}},
				bson.M{"$addFields": bson.M{"owner": bson.M{"$first": "$owner"}}},
			},
		}}},
		{{Key: "$project", Value: bson.M{"watchHistory": 1, "watchedVideos": 1}}},
	}
}

// orderByHistory returns videos in watch history order. $lookup returns them
// in collection order; ids that no longer resolve are skipped and repeated
// ids repeat the video.
func orderByHistory(history []primitive.ObjectID, videos []mongoVideo) []mongoVideo {
	byID := make(map[primitive.ObjectID]mongoVideo, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}
	out := make([]mongoVideo, 0, len(history))
	for _, id := range history {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out
}
