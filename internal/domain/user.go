package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

const ProviderGoogle = "google"

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email"         json:"email"`
	Name         string             `bson:"name,omitempty" json:"name,omitempty"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"`
	Roles        []Role             `bson:"roles"         json:"roles"`
	Provider     string             `bson:"provider,omitempty"   json:"provider,omitempty"`
	ProviderID   string             `bson:"providerId,omitempty" json:"-"` // provider-scoped subject id
	CreatedAt    time.Time          `bson:"createdAt"     json:"created_at"`
}

func (u *User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

// HasAnyRole reports whether the user's role set intersects the given roles.
func (u *User) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

// PublicUser is the shape returned by auth endpoints; never carries the hash.
type PublicUser struct {
	ID    primitive.ObjectID `json:"id"`
	Email string             `json:"email"`
	Roles []Role             `json:"roles"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Roles: u.Roles}
}
