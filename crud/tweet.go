package crud

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"chirper/domain"
	"chirper/errs"
)

// TweetService manages Tweets.
// It implements the domain.TweetService interface.
type TweetService struct {
	tweetValidator
}

// tweetValidator runs validations on incoming Tweet data.
// On success, it passes the data on to tweetGorm.
// Otherwise, it returns the error of the validation that has failed.
type tweetValidator struct {
	tweetGorm
}

// tweetGorm runs CRUD operations on the database using incoming Tweet data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type tweetGorm struct {
	db *gorm.DB
}

// NewTweetService returns an instance of TweetService.
func NewTweetService(db *gorm.DB) *TweetService {
	return &TweetService{
		tweetValidator{
			tweetGorm{
				db: db,
			},
		},
	}
}

// Ensure the TweetService struct properly implements the domain.TweetService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.TweetService = &TweetService{}

// Create runs validations needed for creating new Tweet database records.
func (tv *tweetValidator) Create(ctx context.Context, tweet *domain.Tweet) error {
	err := runTweetValFns(tweet,
		tv.authorIDValid,
		tv.textNormalize,
		tv.textMinLength,
		tv.textMaxLength)
	if err != nil {
		return err
	}
	return tv.tweetGorm.Create(ctx, tweet)
}

// Delete runs validations needed for deleting existing Tweet database records.
func (tv *tweetValidator) Delete(ctx context.Context, tweet *domain.Tweet) error {
	err := runTweetValFns(tweet, tv.idValid)
	if err != nil {
		return err
	}
	return tv.tweetGorm.Delete(ctx, tweet)
}

// runTweetValFns runs any number of functions of type tweetValFn on the passed in Tweet object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runTweetValFns(tweet *domain.Tweet, fns ...tweetValFn) error {
	for _, fn := range fns {
		if err := fn(tweet); err != nil {
			return err
		}
	}
	return nil
}

// A tweetValFn is any function that takes in a pointer to a domain.Tweet object and returns an error.
type tweetValFn func(tweet *domain.Tweet) error

// authorIDValid ensures that the author ID is not empty.
func (tv *tweetValidator) authorIDValid(tweet *domain.Tweet) error {
	if tweet.AuthorID <= 0 {
		return errs.Errorf(errs.EINVALID, "An author is required.")
	}
	return nil
}

// idValid makes sure that the passed in ID of a Tweet to be deleted is greater than 0.
func (tv *tweetValidator) idValid(tweet *domain.Tweet) error {
	if tweet.ID <= 0 {
		return errs.Errorf(errs.EINVALID, "Invalid tweet ID.")
	}
	return nil
}

// textMaxLength makes sure that the Tweet's text does not exceed the maximum length.
func (tv *tweetValidator) textMaxLength(tweet *domain.Tweet) error {
	if utf8.RuneCountInString(tweet.Text) > 280 {
		return errs.Errorf(errs.EINVALID, "Tweet text must not have more than 280 characters.")
	}
	return nil
}

// textMinLength makes sure that the Tweet's text is not blank.
func (tv *tweetValidator) textMinLength(tweet *domain.Tweet) error {
	if tweet.Text == "" {
		return errs.Errorf(errs.EINVALID, "Tweet text must not be empty.")
	}
	return nil
}

// textNormalize trims the text's surrounding whitespaces.
func (tv *tweetValidator) textNormalize(tweet *domain.Tweet) error {
	tweet.Text = strings.TrimSpace(tweet.Text)
	return nil
}

// ByID retrieves a single Tweet by ID, author populated and likes materialized.
// If the record doesn't exist, it returns ENOTFOUND.
func (tg *tweetGorm) ByID(ctx context.Context, id int) (*domain.Tweet, error) {
	var tweet domain.Tweet
	err := tg.db.WithContext(ctx).
		Preload("Author").
		First(&tweet, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The tweet does not exist.")
		}
		return nil, err
	}
	if err := fillLikes(ctx, tg.db, &tweet); err != nil {
		return nil, err
	}
	return &tweet, nil
}

// All retrieves the public feed: every tweet, newest first.
func (tg *tweetGorm) All(ctx context.Context) ([]*domain.Tweet, error) {
	tweets := []*domain.Tweet{}
	err := tg.db.WithContext(ctx).
		Preload("Author").
		Order("created_at desc").
		Find(&tweets).Error
	if err != nil {
		return nil, err
	}
	if err := fillLikes(ctx, tg.db, tweets...); err != nil {
		return nil, err
	}
	return tweets, nil
}

// ByAuthorID retrieves all tweets of one author, newest first.
func (tg *tweetGorm) ByAuthorID(ctx context.Context, authorID int) ([]*domain.Tweet, error) {
	tweets := []*domain.Tweet{}
	err := tg.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Preload("Author").
		Order("created_at desc").
		Find(&tweets).Error
	if err != nil {
		return nil, err
	}
	if err := fillLikes(ctx, tg.db, tweets...); err != nil {
		return nil, err
	}
	return tweets, nil
}

// Search retrieves tweets whose text contains the query, case-insensitive,
// newest first.
func (tg *tweetGorm) Search(ctx context.Context, q string, limit int) ([]*domain.Tweet, error) {
	tweets := []*domain.Tweet{}
	err := tg.db.WithContext(ctx).
		Where("text ILIKE ?", "%"+q+"%").
		Preload("Author").
		Order("created_at desc").
		Limit(limit).
		Find(&tweets).Error
	if err != nil {
		return nil, err
	}
	if err := fillLikes(ctx, tg.db, tweets...); err != nil {
		return nil, err
	}
	return tweets, nil
}

// Create stores the data from the Tweet object in a new database record.
// On success, it eager-loads the author relation, so that the json response
// displays the full data of the tweet's author.
func (tg *tweetGorm) Create(ctx context.Context, tweet *domain.Tweet) error {
	if err := tg.db.WithContext(ctx).Create(tweet).Error; err != nil {
		return err
	}
	if err := tg.db.WithContext(ctx).Preload("Author").First(tweet, "id = ?", tweet.ID).Error; err != nil {
		return err
	}
	tweet.Likes = []int{}
	return nil
}

// Delete removes a Tweet record from the database, along with its likes and
// replies, in a single transaction. There are no partial states: either the
// tweet and everything hanging off it disappear, or nothing does.
func (tg *tweetGorm) Delete(ctx context.Context, tweet *domain.Tweet) error {
	return tg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tweet_id = ?", tweet.ID).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tweet_id = ?", tweet.ID).Delete(&domain.Reply{}).Error; err != nil {
			return err
		}
		return tx.Delete(tweet).Error
	})
}

// fillLikes materializes the Likes field of the given tweets from the likes
// table with one query, so list endpoints don't fan out per tweet.
func fillLikes(ctx context.Context, db *gorm.DB, tweets ...*domain.Tweet) error {
	if len(tweets) == 0 {
		return nil
	}
	ids := make([]int, 0, len(tweets))
	byID := make(map[int]*domain.Tweet, len(tweets))
	for _, t := range tweets {
		t.Likes = []int{}
		ids = append(ids, t.ID)
		byID[t.ID] = t
	}
	var likes []domain.Like
	err := db.WithContext(ctx).
		Where("tweet_id IN ?", ids).
		Order("id asc").
		Find(&likes).Error
	if err != nil {
		return err
	}
	for _, like := range likes {
		if t, ok := byID[like.TweetID]; ok {
			t.Likes = append(t.Likes, like.UserID)
		}
	}
	return nil
}
