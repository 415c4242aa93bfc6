package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ale-zgn/projet-semestriel/config"
	"github.com/ale-zgn/projet-semestriel/models"
	"github.com/ale-zgn/projet-semestriel/repositories"
	"github.com/ale-zgn/projet-semestriel/services"
	"github.com/ale-zgn/projet-semestriel/utils"
	"github.com/ale-zgn/projet-semestriel/websocket"
)

// CarController handles the vehicle inventory endpoints.
type CarController struct {
	db       *mongo.Client
	rentals  *repositories.RentalRepository
	notifier *services.Notifier
}

func NewCarController(db *mongo.Client, rentals *repositories.RentalRepository, notifier *services.Notifier) *CarController {
	return &CarController{db: db, rentals: rentals, notifier: notifier}
}

// GetCars lists cars with optional status/make/model filters. When a date
// window is supplied, cars with an overlapping approved rental are shown as
// "rented"; a read-time projection, the stored documents stay untouched.
func (cc *CarController) GetCars(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" && status != "all" {
		filter["status"] = status
	}
	if make := c.QueryParam("make"); make != "" {
		filter["make"] = primitive.Regex{Pattern: make, Options: "i"}
	}
	if model := c.QueryParam("model"); model != "" {
		filter["carModel"] = primitive.Regex{Pattern: model, Options: "i"}
	}

	collection := config.GetCollection(cc.db, "cars")
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Error retrieving cars",
		})
	}
	defer cursor.Close(ctx)

	var cars []models.Car
	if err := cursor.All(ctx, &cars); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Error decoding cars",
		})
	}

	startStr := c.QueryParam("startDate")
	endStr := c.QueryParam("endDate")
	if startStr != "" && endStr != "" {
		start, errStart := parseDate(startStr)
		end, errEnd := parseDate(endStr)
		if errStart != nil || errEnd != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Success: false,
				Message: "Invalid date format",
			})
		}

		rented, err := cc.rentals.ApprovedCarIDsOverlapping(ctx, start, end)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Success: false,
				Message: "Error checking car availability",
			})
		}
		cars = models.ProjectRentedStatus(cars, rented)
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Cars retrieved successfully",
		Data: map[string]interface{}{
			"cars":  cars,
			"count": len(cars),
		},
	})
}

// CreateCar adds a vehicle to the inventory. Admin only.
func (cc *CarController) CreateCar(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.CreateCarRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Validation failed",
			Errors:  utils.ValidationErrors(err),
		})
	}
	if req.Year > time.Now().Year()+1 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Year cannot be in the future",
		})
	}

	status := req.Status
	if status == "" {
		status = models.CarStatusAvailable
	}

	now := time.Now()
	car := models.Car{
		ID:           primitive.NewObjectID(),
		Make:         utils.SanitizeInput(req.Make),
		CarModel:     utils.SanitizeInput(req.CarModel),
		Year:         req.Year,
		Color:        utils.SanitizeInput(req.Color),
		Status:       status,
		DailyRate:    req.DailyRate,
		Mileage:      req.Mileage,
		LicensePlate: strings.ToUpper(strings.TrimSpace(req.LicensePlate)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	collection := config.GetCollection(cc.db, "cars")
	if _, err := collection.InsertOne(ctx, car); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Success: false,
				Message: "A car with this license plate already exists",
				Errors: []models.FieldError{
					{Field: "licensePlate", Message: "licensePlate already exists"},
				},
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to create car",
		})
	}

	cc.notifier.Broadcast(websocket.EventCarsUpdated, map[string]interface{}{
		"action": "create",
		"car":    car,
	})

	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Car created successfully",
		Data:    map[string]interface{}{"car": car},
	})
}

// UpdateCar applies a partial patch to a vehicle. Admin only.
func (cc *CarController) UpdateCar(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid car ID",
		})
	}

	var req models.UpdateCarRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Validation failed",
			Errors:  utils.ValidationErrors(err),
		})
	}
	if req.Year != nil && *req.Year > time.Now().Year()+1 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Year cannot be in the future",
		})
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Make != nil {
		set["make"] = utils.SanitizeInput(*req.Make)
	}
	if req.CarModel != nil {
		set["carModel"] = utils.SanitizeInput(*req.CarModel)
	}
	if req.Year != nil {
		set["year"] = *req.Year
	}
	if req.Color != nil {
		set["color"] = utils.SanitizeInput(*req.Color)
	}
	if req.Status != nil {
		set["status"] = *req.Status
	}
	if req.DailyRate != nil {
		set["dailyRate"] = *req.DailyRate
	}
	if req.Mileage != nil {
		set["mileage"] = *req.Mileage
	}
	if req.LicensePlate != nil {
		set["licensePlate"] = strings.ToUpper(strings.TrimSpace(*req.LicensePlate))
	}

	collection := config.GetCollection(cc.db, "cars")
	var car models.Car
	err = collection.FindOneAndUpdate(ctx,
		bson.M{"_id": carID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&car)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Message: "Car not found",
			})
		}
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Success: false,
				Message: "A car with this license plate already exists",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to update car",
		})
	}

	cc.notifier.Broadcast(websocket.EventCarsUpdated, map[string]interface{}{
		"action": "update",
		"car":    car,
	})

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Car updated successfully",
		Data:    map[string]interface{}{"car": car},
	})
}

// DeleteCar removes a vehicle and cascades to every rental request that
// references it. Admin only.
func (cc *CarController) DeleteCar(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	carID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid car ID",
		})
	}

	collection := config.GetCollection(cc.db, "cars")
	var car models.Car
	err = collection.FindOneAndDelete(ctx, bson.M{"_id": carID}).Decode(&car)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Message: "Car not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to delete car",
		})
	}

	deleted, err := cc.rentals.DeleteByCar(ctx, carID)
	if err != nil {
		// The car is already gone; an interrupted cascade leaves orphan
		// rentals behind, so make it loud.
		log.Printf("cascade delete of rentals for car %s failed: %v", carID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Car deleted but rental cleanup failed",
		})
	}
	log.Printf("deleted car %s and %d dependent rental requests", carID.Hex(), deleted)

	cc.notifier.Broadcast(websocket.EventCarsUpdated, map[string]interface{}{
		"action": "delete",
		"carId":  carID.Hex(),
	})

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Car deleted successfully",
		Data:    map[string]interface{}{"car": car},
	})
}

// parseDate accepts RFC3339 timestamps or plain dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
