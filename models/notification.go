package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification model
type Notification struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title      string             `json:"title" bson:"title"`
	Location   string             `json:"location" bson:"location"`     // Entity kind, e.g. "RentalRequest"
	LocationID primitive.ObjectID `json:"locationId" bson:"locationId"` // Id of the referenced entity
	UserID     primitive.ObjectID `json:"userId" bson:"userId"`         // Recipient
	IsOpened   bool               `json:"isOpened" bson:"isOpened"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Notification location kinds
const (
	LocationUser          = "User"
	LocationRentalRequest = "RentalRequest"
	LocationCar           = "Car"
)
