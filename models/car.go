// models/car.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Car statuses. "available" and "maintenance" are stored; "rented" is a
// derived display value computed from overlapping approved rentals.
const (
	CarStatusAvailable   = "available"
	CarStatusRented      = "rented"
	CarStatusMaintenance = "maintenance"
)

// Car model
type Car struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Make         string             `json:"make" bson:"make"`
	CarModel     string             `json:"carModel" bson:"carModel"`
	Year         int                `json:"year" bson:"year"`
	Color        string             `json:"color" bson:"color"`
	Status       string             `json:"status" bson:"status"`
	DailyRate    float64            `json:"dailyRate" bson:"dailyRate"`
	Mileage      int                `json:"mileage" bson:"mileage"`
	LicensePlate string             `json:"licensePlate" bson:"licensePlate"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CreateCarRequest struct {
	Make         string  `json:"make" validate:"required"`
	CarModel     string  `json:"carModel" validate:"required"`
	Year         int     `json:"year" validate:"required,min=1900"`
	Color        string  `json:"color" validate:"required"`
	Status       string  `json:"status,omitempty" validate:"omitempty,oneof=available rented maintenance"`
	DailyRate    float64 `json:"dailyRate" validate:"gte=0"`
	Mileage      int     `json:"mileage" validate:"gte=0"`
	LicensePlate string  `json:"licensePlate" validate:"required"`
}

type UpdateCarRequest struct {
	Make         *string  `json:"make,omitempty"`
	CarModel     *string  `json:"carModel,omitempty"`
	Year         *int     `json:"year,omitempty" validate:"omitempty,min=1900"`
	Color        *string  `json:"color,omitempty"`
	Status       *string  `json:"status,omitempty" validate:"omitempty,oneof=available rented maintenance"`
	DailyRate    *float64 `json:"dailyRate,omitempty" validate:"omitempty,gte=0"`
	Mileage      *int     `json:"mileage,omitempty" validate:"omitempty,gte=0"`
	LicensePlate *string  `json:"licensePlate,omitempty"`
}

// ProjectRentedStatus returns a derived listing view: cars whose id appears
// in rented get status "rented" in the returned copies. The stored documents
// are never mutated; availability for a date window is a read-time
// projection, not a persisted state change.
func ProjectRentedStatus(cars []Car, rented map[primitive.ObjectID]struct{}) []Car {
	out := make([]Car, len(cars))
	for i, car := range cars {
		if _, ok := rented[car.ID]; ok {
			car.Status = CarStatusRented
		}
		out[i] = car
	}
	return out
}
