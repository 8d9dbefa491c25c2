package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is a storefront account. Role is stored as the legacy free-form
// tag and mapped to the closed Role enum at the boundary.
type User struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string        `bson:"first_name" json:"first_name" validate:"required,min=2,max=50"`
	LastName  string        `bson:"last_name" json:"last_name" validate:"required,min=2,max=50"`
	Username  string        `bson:"username" json:"username" validate:"required,min=3,max=50"`
	Password  string        `bson:"password" json:"-" validate:"required,min=6"` // Never expose in JSON
	Mobile    string        `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Address   string        `bson:"address,omitempty" json:"address,omitempty"`
	Gender    string        `bson:"gender,omitempty" json:"gender,omitempty"`
	Role      string        `bson:"role" json:"role"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,min=2,max=50"`
	LastName  string `json:"last_name" binding:"required,min=2,max=50"`
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Password  string `json:"password" binding:"required,min=6"`
	Mobile    string `json:"mobile"`
	Address   string `json:"address"`
	Gender    string `json:"gender"`
	Role      string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ActorRole resolves the stored role tag against the closed enum.
func (u *User) ActorRole() (Role, error) {
	return ParseRole(u.Role)
}

func (u *User) GetFullName() string {
	return u.FirstName + " " + u.LastName
}
