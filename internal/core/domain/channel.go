package domain

import "time"

// ChannelProfile is the public view of a user's channel as seen by a viewer.
type ChannelProfile struct {
	ID                string `json:"_id"`
	Username          string `json:"username"`
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	Avatar            string `json:"avatar"`
	CoverImage        string `json:"coverImage"`
	SubscribersCount  int    `json:"subscribersCount"`
	SubscribedToCount int    `json:"subscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// VideoOwner is the projection of the uploading user embedded in a video.
type VideoOwner struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// WatchedVideo is an entry of a user's watch history joined with its owner.
type WatchedVideo struct {
	ID          string      `json:"_id"`
	VideoFile   string      `json:"videoFile"`
	Thumbnail   string      `json:"thumbnail"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Duration    float64     `json:"duration"`
	Views       int64       `json:"views"`
	IsPublished bool        `json:"isPublished"`
	Owner       *VideoOwner `json:"owner,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Subscription links a subscriber to a channel (both user ids).
type Subscription struct {
	ID         string    `json:"_id"`
	Subscriber string    `json:"subscriber"`
	Channel    string    `json:"channel"`
	CreatedAt  time.Time `json:"createdAt"`
}
