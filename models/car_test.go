package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProjectRentedStatus(t *testing.T) {
	rentedCar := Car{ID: primitive.NewObjectID(), Status: CarStatusAvailable}
	freeCar := Car{ID: primitive.NewObjectID(), Status: CarStatusAvailable}
	maintenanceCar := Car{ID: primitive.NewObjectID(), Status: CarStatusMaintenance}

	cars := []Car{rentedCar, freeCar, maintenanceCar}
	rented := map[primitive.ObjectID]struct{}{
		rentedCar.ID: {},
	}

	projected := ProjectRentedStatus(cars, rented)

	assert.Equal(t, CarStatusRented, projected[0].Status)
	assert.Equal(t, CarStatusAvailable, projected[1].Status)
	assert.Equal(t, CarStatusMaintenance, projected[2].Status)

	// The input slice is untouched; the rented status never persists.
	assert.Equal(t, CarStatusAvailable, cars[0].Status)
}

func TestProjectRentedStatusEmpty(t *testing.T) {
	projected := ProjectRentedStatus(nil, nil)
	assert.Empty(t, projected)

	car := Car{ID: primitive.NewObjectID(), Status: CarStatusAvailable}
	projected = ProjectRentedStatus([]Car{car}, nil)
	assert.Equal(t, CarStatusAvailable, projected[0].Status)
}
