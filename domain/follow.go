package domain

import (
	"context"
	"time"
)

// Follow states reported by FollowService.Toggle.
const (
	Followed   = "followed"
	Unfollowed = "unfollowed"
)

// Follow represents a self-referential many-to-many relationship between two
// users. The FollowerID is the ID of the user that follows, the FollowedID is
// the ID of the user being followed. A single follows row is the relationship:
// a user's follower and following lists are both projections of this table,
// so they cannot drift apart. The composite unique index makes the edge a set
// member, never a duplicable list entry.
type Follow struct {
	ID         int `json:"id"`
	FollowerID int `json:"follower_id" gorm:"notNull;index;uniqueIndex:idx_follow_edge"`
	FollowedID int `json:"followed_id" gorm:"notNull;index;uniqueIndex:idx_follow_edge"`

	CreatedAt time.Time `json:"created_at"`
}

// FollowService is a set of methods to manipulate and work with the Follow model.
type FollowService interface {
	// Toggle flips the relationship between follower and followed and
	// reports the new state, Followed or Unfollowed.
	Toggle(ctx context.Context, followerID, followedID int) (string, error)
}
