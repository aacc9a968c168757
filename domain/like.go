package domain

import (
	"context"
	"time"
)

// Like represents a many-to-many relationship between a User and a Tweet.
// The composite unique index guarantees that a user appears at most once in
// a tweet's likes, even under concurrent or retried requests.
type Like struct {
	ID      int `json:"id"`
	UserID  int `json:"user_id" gorm:"notNull;index;uniqueIndex:idx_like_edge"`
	TweetID int `json:"tweet_id" gorm:"notNull;index;uniqueIndex:idx_like_edge"`

	CreatedAt time.Time `json:"created_at"`
}

// LikeService is a set of methods to manipulate and work with the Like model.
type LikeService interface {
	// Toggle flips the user's like on the tweet and returns the updated
	// tweet so the caller can render the new count without a second fetch.
	Toggle(ctx context.Context, tweetID, userID int) (*Tweet, error)
}
