package models

import (
	"regexp"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

const MaxUsernameLength = 150

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// User is owned by the authentication service; the journal only reads it.
type User struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"type:varchar(150);uniqueIndex;not null"`
	AvatarURL string    `gorm:"type:varchar(500)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ValidUsername applies the account service's username rules.
func ValidUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	return n > 0 && n <= MaxUsernameLength && usernamePattern.MatchString(username)
}

// BeforeSave hook for validation
func (u *User) BeforeSave(tx *gorm.DB) error {
	if !ValidUsername(u.Username) {
		return gorm.ErrInvalidData
	}
	return nil
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// MiniUser is the public projection of a user.
type MiniUser struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (u *User) Mini() MiniUser {
	return MiniUser{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}

func MiniUsers(users []User) []MiniUser {
	out := make([]MiniUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Mini())
	}
	return out
}
