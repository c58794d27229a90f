package liberfly

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenType is the only token type this API hands out.
const TokenType = "Bearer"

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// AccessToken is a persisted bearer credential. A user may hold any number
// of live tokens at once (one per device/session); issuing a new token never
// touches the rest.
type AccessToken struct {
	bun.BaseModel `bun:"table:access_tokens,alias:tok"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"-"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	ExpiresAt     *time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Expired reports whether the token is past its expiry. A nil ExpiresAt
// means the token does not expire.
func (t *AccessToken) Expired(now time.Time) bool {
	if t == nil {
		return true
	}
	if t.ExpiresAt == nil {
		return false
	}
	return !now.Before(*t.ExpiresAt)
}
