package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold. Admins manage the catalog; everyone else is a
// regular user who reviews and votes.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a registered account. Email and username are unique
// (case-insensitively, via folded fields and unique indexes). Passwords are
// stored only as bcrypt hashes.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	UsernameCI   string             `bson:"username_ci"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	IsVerified   bool               `bson:"is_verified"`
	Role         string             `bson:"role"`

	// Movies the user has added to "Liked by you". Membership is guarded,
	// not toggled: liking twice is a conflict.
	LikedMovies []primitive.ObjectID `bson:"liked_movies,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}
