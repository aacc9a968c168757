package crud

import (
	"context"

	"gorm.io/gorm"

	"chirper/domain"
	"chirper/errs"
)

// FollowService manages Follows.
// It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

// followValidator runs validations on an incoming follow toggle.
// On success, it passes the toggle on to followGorm.
type followValidator struct {
	followGorm
}

// followGorm flips follow edges in the database.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

// Ensure the FollowService struct properly implements the domain.FollowService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FollowService = &FollowService{}

// Toggle flips the follow relationship from follower to followed and reports
// the new state. The self-follow check runs before any lookup.
func (fv *followValidator) Toggle(ctx context.Context, followerID, followedID int) (string, error) {
	if err := fv.notSelf(followerID, followedID); err != nil {
		return "", err
	}
	return fv.followGorm.Toggle(ctx, followerID, followedID)
}

// notSelf makes sure that a user is not trying to follow themselves.
func (fv *followValidator) notSelf(followerID, followedID int) error {
	if followerID == followedID {
		return errs.Errorf(errs.EINVALID, "You cannot follow yourself.")
	}
	return nil
}

// Toggle removes the follow edge if it exists and creates it otherwise.
// The whole flip runs in one transaction, and the followers and following
// lists are both projections of the single follows row, so the relationship
// can never end up one-sided. FirstOrCreate plus the unique index on the
// edge keep retried or concurrent toggles from duplicating membership.
func (fg *followGorm) Toggle(ctx context.Context, followerID, followedID int) (string, error) {
	state := ""
	err := fg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range []int{followerID, followedID} {
			if err := tx.First(&domain.User{}, "id = ?", id).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
				}
				return err
			}
		}

		var follow domain.Follow
		err := tx.Where("follower_id = ? AND followed_id = ?", followerID, followedID).
			First(&follow).Error
		if err == nil {
			state = domain.Unfollowed
			return tx.Delete(&follow).Error
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		state = domain.Followed
		return tx.Where(domain.Follow{FollowerID: followerID, FollowedID: followedID}).
			FirstOrCreate(&domain.Follow{FollowerID: followerID, FollowedID: followedID}).Error
	})
	if err != nil {
		return "", err
	}
	return state, nil
}
