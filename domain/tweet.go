package domain

import (
	"context"
	"time"
)

// Tweet is a single post. Likes holds the IDs of the users who currently
// like the tweet, materialized from the likes table on every read.
type Tweet struct {
	ID       int    `json:"id"`
	Text     string `json:"text" gorm:"size:280;notNull"`
	AuthorID int    `json:"-" gorm:"notNull;index"`
	Author   *User  `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Likes    []int  `json:"likes" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TweetService is a set of methods to manipulate and work with the Tweet model.
type TweetService interface {
	ByID(ctx context.Context, id int) (*Tweet, error)
	// All returns the public feed, newest first, authors populated.
	All(ctx context.Context) ([]*Tweet, error)
	ByAuthorID(ctx context.Context, authorID int) ([]*Tweet, error)
	Create(ctx context.Context, tweet *Tweet) error
	Delete(ctx context.Context, tweet *Tweet) error
	Search(ctx context.Context, q string, limit int) ([]*Tweet, error)
}
