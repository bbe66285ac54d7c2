package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GroupStatus string

const (
	GroupStatusActive   GroupStatus = "active"
	GroupStatusArchived GroupStatus = "archived"
)

// Group is a named pool of drivers a dispatcher can target a share at.
type Group struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name" validate:"required"`
	Description string             `json:"description" bson:"description"`
	OwnerID     primitive.ObjectID `json:"owner_id" bson:"owner_id"`
	Status      GroupStatus        `json:"status" bson:"status" default:"active"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// GroupMembership is the join between users and groups; one document per
// (group_id, user_id) pair.
type GroupMembership struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	GroupID   primitive.ObjectID `json:"group_id" bson:"group_id" validate:"required"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Role      string             `json:"role" bson:"role"` // "leader" | "member"
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
