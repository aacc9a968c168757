package crud

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"chirper/domain"
	"chirper/errs"
)

// UserService manages Users. It also contains the part of the authentication
// system that handles database interactions and password hashing, with
// http/auth.go dealing with requests, tokens and middleware being the
// "frontend". It implements the domain.UserService interface.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	pepper     string
	emailRegex *regexp.Regexp
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type userGorm struct {
	db *gorm.DB
}

// NewUserService returns an instance of UserService.
func NewUserService(db *gorm.DB, pepper string) *UserService {
	return &UserService{
		userValidator{
			pepper:     pepper,
			emailRegex: regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,16}$`),
			userGorm: userGorm{
				db: db,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// Authenticate checks a submitted email address and password for existence and
// correctness. Both failure modes report the same error, so a caller cannot
// probe which email addresses exist.
func (uv *userValidator) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	found, err := uv.userGorm.ByEmail(ctx, email)
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return nil, errs.Errorf(errs.ENOTAUTHENTICATED, "Invalid credentials.")
		}
		return nil, err
	}
	if err := uv.comparePassword(found, password); err != nil {
		return nil, errs.Errorf(errs.ENOTAUTHENTICATED, "Invalid credentials.")
	}
	return found, nil
}

// Create runs validations needed for creating new User database records.
func (uv *userValidator) Create(ctx context.Context, user *domain.User) error {
	err := runUserValFns(user,
		uv.usernameNormalize,
		uv.usernameRequired,
		uv.usernameLength,
		uv.usernameIsAvail,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.emailIsAvail,
		uv.passwordRequired,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.bioMaxLength)
	if err != nil {
		return err
	}
	return uv.userGorm.Create(ctx, user)
}

// Update applies a profile update all-or-nothing: every check runs before the
// single save, so a rejected password change or username collision leaves the
// whole profile untouched.
func (uv *userValidator) Update(ctx context.Context, id int, upd domain.UserUpdate) (*domain.User, error) {
	user, err := uv.userGorm.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The password gate runs first. If it fails, no other field is applied.
	if upd.NewPassword != nil {
		if upd.CurrentPassword == nil {
			return nil, errs.Errorf(errs.EINVALID, "The current password is required to change the password.")
		}
		if err := uv.comparePassword(user, *upd.CurrentPassword); err != nil {
			return nil, errs.Errorf(errs.EINVALID, "The current password is incorrect.")
		}
		user.Password = *upd.NewPassword
	}
	if upd.Username != nil {
		user.Username = *upd.Username
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	if upd.Avatar != nil {
		user.Avatar = *upd.Avatar
	}

	err = runUserValFns(user,
		uv.usernameNormalize,
		uv.usernameRequired,
		uv.usernameLength,
		uv.usernameIsAvail,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.passwordMinLength,
		uv.passwordBcrypt,
		uv.passwordHashRequired,
		uv.bioMaxLength)
	if err != nil {
		// Update-time conflicts map to 400, unlike registration's 409.
		if errs.ErrorCode(err) == errs.ECONFLICT {
			return nil, errs.Errorf(errs.EINVALID, "%s", errs.ErrorMessage(err))
		}
		return nil, err
	}
	if err := uv.userGorm.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// comparePassword checks a plaintext password against the user's stored
// digest, using the app-wide pepper.
func (uv *userValidator) comparePassword(user *domain.User, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password+uv.pepper))
}

// runUserValFns runs any number of functions of type userValFn on the passed in User object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runUserValFns(user *domain.User, fns ...userValFn) error {
	for _, fn := range fns {
		if err := fn(user); err != nil {
			return err
		}
	}
	return nil
}

// A userValFn is any function that takes in a pointer to a domain.User object and returns an error.
type userValFn func(user *domain.User) error

// bioMaxLength makes sure that the bio does not exceed 160 characters.
func (uv *userValidator) bioMaxLength(user *domain.User) error {
	if utf8.RuneCountInString(user.Bio) > 160 {
		return errs.Errorf(errs.EINVALID, "The bio must not have more than 160 characters.")
	}
	return nil
}

// emailFormat makes sure that a provided email address matches a predefined regex pattern.
func (uv *userValidator) emailFormat(user *domain.User) error {
	if user.Email == "" {
		return nil
	}
	if !uv.emailRegex.MatchString(user.Email) {
		return errs.Errorf(errs.EINVALID, "The email address is invalid.")
	}
	return nil
}

// emailIsAvail makes sure that a provided email address is not yet taken.
func (uv *userValidator) emailIsAvail(user *domain.User) error {
	existing, err := uv.userGorm.ByEmail(context.Background(), user.Email)
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		// Address is not taken.
		return nil
	}
	if err != nil {
		return err
	}
	if user.ID != existing.ID {
		// Email found, and the passed in user is not the owner of that email.
		return errs.Errorf(errs.ECONFLICT, "This email address is already taken.")
	}
	return nil
}

// emailNormalize converts the email to all lowercase and trims its whitespaces.
func (uv *userValidator) emailNormalize(user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	user.Email = strings.TrimSpace(user.Email)
	return nil
}

// emailRequired makes sure that the email is not the empty string.
func (uv *userValidator) emailRequired(user *domain.User) error {
	if user.Email == "" {
		return errs.Errorf(errs.EINVALID, "An email address is required.")
	}
	return nil
}

// passwordBcrypt hashes a user's password with a predefined pepper.
// It bcrypts it, if the Password field is not the empty string.
// It then clears the password on the user object in memory for security reasons.
func (uv *userValidator) passwordBcrypt(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	pwBytes := []byte(user.Password + uv.pepper)
	hashedBytes, err := bcrypt.GenerateFromPassword(pwBytes, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedBytes)
	user.Password = ""
	return nil
}

// passwordHashRequired makes sure that the user's password hash is not the empty string.
func (uv *userValidator) passwordHashRequired(user *domain.User) error {
	if user.PasswordHash == "" {
		return errs.Errorf(errs.EINVALID, "A password is required.")
	}
	return nil
}

// passwordMinLength makes sure that the user's password is at least 8 characters long.
func (uv *userValidator) passwordMinLength(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	if utf8.RuneCountInString(user.Password) < 8 {
		return errs.Errorf(errs.EINVALID, "The password must have at least 8 characters.")
	}
	return nil
}

// passwordRequired makes sure that the user's password is not the empty string.
func (uv *userValidator) passwordRequired(user *domain.User) error {
	if user.Password == "" {
		return errs.Errorf(errs.EINVALID, "A password is required.")
	}
	return nil
}

// usernameIsAvail makes sure that a provided username is not yet taken.
func (uv *userValidator) usernameIsAvail(user *domain.User) error {
	existing, err := uv.userGorm.byUsername(context.Background(), user.Username)
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		// Username is not taken.
		return nil
	}
	if err != nil {
		return err
	}
	if user.ID != existing.ID {
		return errs.Errorf(errs.ECONFLICT, "This username is already taken.")
	}
	return nil
}

// usernameLength makes sure that the username is between 3 and 30 characters long.
func (uv *userValidator) usernameLength(user *domain.User) error {
	if user.Username == "" {
		return nil
	}
	n := utf8.RuneCountInString(user.Username)
	if n < 3 || n > 30 {
		return errs.Errorf(errs.EINVALID, "The username must be between 3 and 30 characters long.")
	}
	return nil
}

// usernameNormalize trims the username's whitespaces.
func (uv *userValidator) usernameNormalize(user *domain.User) error {
	user.Username = strings.TrimSpace(user.Username)
	return nil
}

// usernameRequired makes sure that the username is not the empty string.
func (uv *userValidator) usernameRequired(user *domain.User) error {
	if user.Username == "" {
		return errs.Errorf(errs.EINVALID, "A username is required.")
	}
	return nil
}

// ByID retrieves a User database record by ID.
func (ug *userGorm) ByID(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}
	return &user, nil
}

// ByUsername retrieves a User database record by username, along with its
// followers and following lists. Both lists are projections of the follows
// table, resolved with explicit joins.
func (ug *userGorm) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := ug.byUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	followers := []*domain.User{}
	err = ug.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", user.ID).
		Find(&followers).Error
	if err != nil {
		return nil, err
	}
	user.Followers = followers

	following := []*domain.User{}
	err = ug.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", user.ID).
		Find(&following).Error
	if err != nil {
		return nil, err
	}
	user.Following = following

	return user, nil
}

// byUsername retrieves a bare User database record by username.
func (ug *userGorm) byUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}
	return &user, nil
}

// ByEmail retrieves a User database record by email.
func (ug *userGorm) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}
	return &user, nil
}

// Create stores the data from the User object in a new database record.
func (ug *userGorm) Create(ctx context.Context, user *domain.User) error {
	return ug.db.WithContext(ctx).Create(user).Error
}

// Update saves changes to an existing user record in the database.
func (ug *userGorm) Update(ctx context.Context, user *domain.User) error {
	return ug.db.WithContext(ctx).Save(user).Error
}

// Search retrieves users whose username contains the query, case-insensitive.
func (ug *userGorm) Search(ctx context.Context, q string, limit int) ([]*domain.User, error) {
	users := []*domain.User{}
	err := ug.db.WithContext(ctx).
		Where("username ILIKE ?", "%"+q+"%").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
