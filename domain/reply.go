package domain

import (
	"context"
	"time"
)

// Reply is a comment on a tweet. Replies cannot be nested.
type Reply struct {
	ID       int    `json:"id"`
	Text     string `json:"text" gorm:"size:280;notNull"`
	AuthorID int    `json:"-" gorm:"notNull;index"`
	Author   *User  `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	TweetID  int    `json:"tweet_id" gorm:"notNull;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReplyService is a set of methods to manipulate and work with the Reply model.
type ReplyService interface {
	ByID(ctx context.Context, id int) (*Reply, error)
	// ByTweetID returns a tweet's replies, oldest first, authors populated.
	ByTweetID(ctx context.Context, tweetID int) ([]*Reply, error)
	Create(ctx context.Context, reply *Reply) error
	Delete(ctx context.Context, reply *Reply) error
}
