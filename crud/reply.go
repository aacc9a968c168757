package crud

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"chirper/domain"
	"chirper/errs"
)

// ReplyService manages Replies.
// It implements the domain.ReplyService interface.
type ReplyService struct {
	replyValidator
}

// replyValidator runs validations on incoming Reply data.
// On success, it passes the data on to replyGorm.
// Otherwise, it returns the error of the validation that has failed.
type replyValidator struct {
	replyGorm
}

// replyGorm runs CRUD operations on the database using incoming Reply data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type replyGorm struct {
	db *gorm.DB
}

// NewReplyService returns an instance of ReplyService.
func NewReplyService(db *gorm.DB) *ReplyService {
	return &ReplyService{
		replyValidator{
			replyGorm{
				db: db,
			},
		},
	}
}

// Ensure the ReplyService struct properly implements the domain.ReplyService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.ReplyService = &ReplyService{}

// Create runs validations needed for creating new Reply database records.
func (rv *replyValidator) Create(ctx context.Context, reply *domain.Reply) error {
	err := runReplyValFns(reply,
		rv.authorIDValid,
		rv.parentTweetExists,
		rv.textNormalize,
		rv.textMinLength,
		rv.textMaxLength)
	if err != nil {
		return err
	}
	return rv.replyGorm.Create(ctx, reply)
}

// Delete runs validations needed for deleting existing Reply database records.
func (rv *replyValidator) Delete(ctx context.Context, reply *domain.Reply) error {
	err := runReplyValFns(reply, rv.idValid)
	if err != nil {
		return err
	}
	return rv.replyGorm.Delete(ctx, reply)
}

// runReplyValFns runs any number of functions of type replyValFn on the passed in Reply object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runReplyValFns(reply *domain.Reply, fns ...replyValFn) error {
	for _, fn := range fns {
		if err := fn(reply); err != nil {
			return err
		}
	}
	return nil
}

// A replyValFn is any function that takes in a pointer to a domain.Reply object and returns an error.
type replyValFn func(reply *domain.Reply) error

// authorIDValid ensures that the author ID is not empty.
func (rv *replyValidator) authorIDValid(reply *domain.Reply) error {
	if reply.AuthorID <= 0 {
		return errs.Errorf(errs.EINVALID, "An author is required.")
	}
	return nil
}

// idValid makes sure that the passed in ID of a Reply to be deleted is greater than 0.
func (rv *replyValidator) idValid(reply *domain.Reply) error {
	if reply.ID <= 0 {
		return errs.Errorf(errs.EINVALID, "Invalid reply ID.")
	}
	return nil
}

// parentTweetExists makes sure that the tweet to be replied to actually exists.
func (rv *replyValidator) parentTweetExists(reply *domain.Reply) error {
	err := rv.db.First(&domain.Tweet{}, "id = ?", reply.TweetID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "The tweet does not exist.")
		}
		return err
	}
	return nil
}

// textMaxLength makes sure that the Reply's text does not exceed the maximum length.
func (rv *replyValidator) textMaxLength(reply *domain.Reply) error {
	if utf8.RuneCountInString(reply.Text) > 280 {
		return errs.Errorf(errs.EINVALID, "Reply text must not have more than 280 characters.")
	}
	return nil
}

// textMinLength makes sure that the Reply's text is not blank.
func (rv *replyValidator) textMinLength(reply *domain.Reply) error {
	if reply.Text == "" {
		return errs.Errorf(errs.EINVALID, "Reply text must not be empty.")
	}
	return nil
}

// textNormalize trims the text's surrounding whitespaces.
func (rv *replyValidator) textNormalize(reply *domain.Reply) error {
	reply.Text = strings.TrimSpace(reply.Text)
	return nil
}

// ByID retrieves a single Reply by ID, author populated.
// If the record doesn't exist, it returns ENOTFOUND.
func (rg *replyGorm) ByID(ctx context.Context, id int) (*domain.Reply, error) {
	var reply domain.Reply
	err := rg.db.WithContext(ctx).
		Preload("Author").
		First(&reply, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The reply does not exist.")
		}
		return nil, err
	}
	return &reply, nil
}

// ByTweetID retrieves all replies to one tweet, oldest first.
func (rg *replyGorm) ByTweetID(ctx context.Context, tweetID int) ([]*domain.Reply, error) {
	replies := []*domain.Reply{}
	err := rg.db.WithContext(ctx).
		Where("tweet_id = ?", tweetID).
		Preload("Author").
		Order("created_at asc").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

// Create stores the data from the Reply object in a new database record.
// On success, it eager-loads the author relation, so that the json response
// displays the full data of the reply's author.
func (rg *replyGorm) Create(ctx context.Context, reply *domain.Reply) error {
	if err := rg.db.WithContext(ctx).Create(reply).Error; err != nil {
		return err
	}
	return rg.db.WithContext(ctx).Preload("Author").First(reply, "id = ?", reply.ID).Error
}

// Delete permanently deletes the database record matching the Reply object.
func (rg *replyGorm) Delete(ctx context.Context, reply *domain.Reply) error {
	return rg.db.WithContext(ctx).Delete(reply).Error
}
