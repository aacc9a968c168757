package crud

import (
	"context"

	"gorm.io/gorm"

	"chirper/domain"
	"chirper/errs"
)

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeGorm
}

// likeGorm flips like edges in the database.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeGorm{
			db: db,
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Toggle flips the user's like on the tweet: remove it if present, add it
// otherwise. The membership flip runs in one transaction and the unique index
// on (user_id, tweet_id) makes the add a set-add, so two near-simultaneous
// likes by the same user cannot double-count. Returns the updated tweet with
// its author populated and likes materialized.
func (lg *likeGorm) Toggle(ctx context.Context, tweetID, userID int) (*domain.Tweet, error) {
	err := lg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&domain.Tweet{}, "id = ?", tweetID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.Errorf(errs.ENOTFOUND, "The tweet does not exist.")
			}
			return err
		}

		var like domain.Like
		err := tx.Where("user_id = ? AND tweet_id = ?", userID, tweetID).
			First(&like).Error
		if err == nil {
			return tx.Delete(&like).Error
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		return tx.Where(domain.Like{UserID: userID, TweetID: tweetID}).
			FirstOrCreate(&domain.Like{UserID: userID, TweetID: tweetID}).Error
	})
	if err != nil {
		return nil, err
	}

	var tweet domain.Tweet
	err = lg.db.WithContext(ctx).
		Preload("Author").
		First(&tweet, "id = ?", tweetID).Error
	if err != nil {
		return nil, err
	}
	if err := fillLikes(ctx, lg.db, &tweet); err != nil {
		return nil, err
	}
	return &tweet, nil
}
