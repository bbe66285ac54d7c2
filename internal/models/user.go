package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStatus string
type UserType string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"

	UserTypeDriver     UserType = "driver"
	UserTypeDispatcher UserType = "dispatcher"
	UserTypeAdmin      UserType = "admin"
)

type User struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName   string             `json:"first_name" bson:"first_name" validate:"required,min=2,max=50"`
	LastName    string             `json:"last_name" bson:"last_name" validate:"required,min=2,max=50"`
	Email       string             `json:"email" bson:"email" validate:"required,email"`
	Phone       string             `json:"phone" bson:"phone"`
	Password    string             `json:"-" bson:"password"`
	UserType    UserType           `json:"user_type" bson:"user_type" validate:"required"`
	Status      UserStatus         `json:"status" bson:"status" default:"active"`
	// Roles supplements UserType for accounts carrying more than one
	// capability (a dispatcher who also drives).
	Roles        []UserType `json:"roles" bson:"roles"`
	LastActiveAt *time.Time `json:"last_active_at" bson:"last_active_at"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
}

// IsDriver reports whether the account carries the driver capability,
// either as its primary type or as a supplemental role.
func (u *User) IsDriver() bool {
	if u.UserType == UserTypeDriver {
		return true
	}
	for _, r := range u.Roles {
		if r == UserTypeDriver {
			return true
		}
	}
	return false
}
