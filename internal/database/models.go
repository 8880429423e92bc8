package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the database model for the users table.
// Email carries a unique index; duplicate inserts surface as a
// duplicate-key error which the repository maps to a conflict.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID               uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email            string    `bun:"email,notnull,unique"`
	PasswordHash     string    `bun:"password_hash,notnull"`
	FullName         string    `bun:"full_name,notnull"`
	Bio              string    `bun:"bio,nullzero"`
	ProfilePic       string    `bun:"profile_pic,nullzero"`
	NativeLanguage   string    `bun:"native_language,nullzero"`
	LearningLanguage string    `bun:"learning_language,nullzero"`
	Location         string    `bun:"location,nullzero"`
	IsOnboarded      bool      `bun:"is_onboarded,notnull,default:false"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
