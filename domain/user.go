package domain

import (
	"context"
	"time"
)

// User is an account holder. Password only ever carries the plaintext input
// of a register / password-change request and is never persisted; the crud
// layer clears it once the hash is computed.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username" gorm:"uniqueIndex;size:30;notNull"`
	Email        string `json:"email" gorm:"uniqueIndex;notNull"`
	Password     string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-"`
	Bio          string `json:"bio" gorm:"size:160"`
	Avatar       string `json:"avatar"`

	// Followers and Following are materialized from the follows table by
	// explicit queries, never lazily.
	Followers []*User `json:"followers,omitempty" gorm:"-"`
	Following []*User `json:"following,omitempty" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserUpdate carries the optional fields of a profile update. A nil field
// means "leave unchanged". Changing the password requires CurrentPassword.
type UserUpdate struct {
	Username        *string `json:"username"`
	Bio             *string `json:"bio"`
	Avatar          *string `json:"avatar"`
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	ByID(ctx context.Context, id int) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, id int, upd UserUpdate) (*User, error)
	Search(ctx context.Context, q string, limit int) ([]*User, error)
}
