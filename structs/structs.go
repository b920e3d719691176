// Package structs defines the entities shared across the data, service, and
// handler layers: users, transport sessions, session audit records,
// remember-me tokens, and tasks.
package structs

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account. The password is stored as a bcrypt hash and
// never leaves the data layer in responses.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	CreatedAt    time.Time          `bson:"created_at" json:"-"`
}

// Session is the authoritative transport session consulted for access
// control. The cookie carries only SessionID; the document holds the payload
// and the server-side expiry.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SessionID string             `bson:"session_id" json:"-"`
	Email     string             `bson:"email" json:"email"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Permanent bool               `bson:"permanent" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"-"`
	ExpiresAt time.Time          `bson:"expires_at" json:"-"`
}

// SessionInfo is the best-effort, human-readable audit mirror of a transport
// session. Records are deactivated on logout, never deleted.
type SessionInfo struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	SessionID string             `bson:"session_id"`
	Email     string             `bson:"email"`
	UserID    string             `bson:"user_id"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
	ExpiresAt time.Time          `bson:"expires_at"`
	IsActive  bool               `bson:"is_active"`
}

// AuthToken is a long-lived opaque bearer credential for remember-me
// auto-login. Possession alone re-authenticates; expiry is enforced at
// validation time regardless of the IsActive flag.
type AuthToken struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Token      string             `bson:"token"`
	UserID     string             `bson:"user_id"`
	Email      string             `bson:"email"`
	CreatedAt  time.Time          `bson:"created_at"`
	ExpiresAt  time.Time          `bson:"expires_at"`
	IsActive   bool               `bson:"is_active"`
	LastUsedAt *time.Time         `bson:"last_used_at,omitempty"`
	RevokedAt  *time.Time         `bson:"revoked_at,omitempty"`
}

// TokenIdentity is the payload returned by a successful token validation.
type TokenIdentity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Task is a to-do item owned by exactly one user. The owner id is filtered on
// every read and write and is never exposed in responses.
type Task struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Text   string             `bson:"text" json:"text"`
	Done   bool               `bson:"done" json:"done"`
	UserID string             `bson:"user_id" json:"-"`
}
