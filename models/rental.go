// models/rental.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rental request statuses. Only "pending" and "approved" may transition
// further; the rest are terminal.
const (
	RentalStatusPending   = "pending"
	RentalStatusApproved  = "approved"
	RentalStatusCompleted = "completed"
	RentalStatusRejected  = "rejected"
	RentalStatusCancelled = "cancelled"
)

// ValidRentalStatus reports whether s is a known rental status.
func ValidRentalStatus(s string) bool {
	switch s {
	case RentalStatusPending, RentalStatusApproved, RentalStatusCompleted,
		RentalStatusRejected, RentalStatusCancelled:
		return true
	}
	return false
}

// RentalRequest model. Ownership is by account id (UserID); the customer
// fields are a contact snapshot taken at creation time for display.
type RentalRequest struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"userId" bson:"userId"`
	CarID         primitive.ObjectID `json:"carId" bson:"carId"`
	CustomerName  string             `json:"customerName" bson:"customerName"`
	CustomerEmail string             `json:"customerEmail" bson:"customerEmail"`
	CustomerPhone string             `json:"customerPhone,omitempty" bson:"customerPhone,omitempty"`
	StartDate     time.Time          `json:"startDate" bson:"startDate"`
	EndDate       time.Time          `json:"endDate" bson:"endDate"`
	Status        string             `json:"status" bson:"status"`
	Notes         string             `json:"notes,omitempty" bson:"notes,omitempty"`
	TotalCost     float64            `json:"totalCost" bson:"totalCost"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// RentalWithCar is the expanded listing shape selected by ?expand=car. The
// bare RentalRequest carries only the car reference; this variant embeds the
// joined document. The two shapes are distinct types, never inferred from
// the runtime value.
type RentalWithCar struct {
	RentalRequest
	Car *Car `json:"car,omitempty"`
}

type CreateRentalRequest struct {
	CarID     string    `json:"carId" validate:"required"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
	Status    string    `json:"status,omitempty" validate:"omitempty,oneof=pending approved completed rejected cancelled"`
	Notes     string    `json:"notes,omitempty"`
	TotalCost float64   `json:"totalCost" validate:"gte=0"`
}

// UpdateRentalRequest is a partial patch; nil fields are left unchanged.
type UpdateRentalRequest struct {
	Status    *string    `json:"status,omitempty" validate:"omitempty,oneof=pending approved completed rejected cancelled"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	TotalCost *float64   `json:"totalCost,omitempty" validate:"omitempty,gte=0"`
}

// ChangedFields lists the names of the fields present in the patch.
func (r *UpdateRentalRequest) ChangedFields() []string {
	var fields []string
	if r.Status != nil {
		fields = append(fields, "status")
	}
	if r.StartDate != nil {
		fields = append(fields, "startDate")
	}
	if r.EndDate != nil {
		fields = append(fields, "endDate")
	}
	if r.Notes != nil {
		fields = append(fields, "notes")
	}
	if r.TotalCost != nil {
		fields = append(fields, "totalCost")
	}
	return fields
}

// TouchesDates reports whether the patch moves either end of the range.
func (r *UpdateRentalRequest) TouchesDates() bool {
	return r.StartDate != nil || r.EndDate != nil
}
