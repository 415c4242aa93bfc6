// config/db.go
package config

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes connection to MongoDB
func ConnectDB() *mongo.Client {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = os.Getenv("MONGODB_URI")
	}
	if mongoURI == "" {
		env := os.Getenv("ENV")
		if env == "development" || env == "dev" {
			mongoURI = "mongodb://localhost:27017"
		} else {
			log.Fatal("MONGO_URI or MONGODB_URI environment variable is required for production")
		}
	}

	log.Printf("Connecting to MongoDB at: %s", maskMongoURI(mongoURI))

	clientOptions := options.Client().ApplyURI(mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatal("MongoDB connection error:", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("MongoDB ping error:", err)
	}

	log.Println("Connected to MongoDB")

	setupCollections(client)

	return client
}

// DatabaseName returns the configured database name.
func DatabaseName() string {
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "carrental"
	}
	return dbName
}

// GetCollection returns MongoDB collection
func GetCollection(client *mongo.Client, collectionName string) *mongo.Collection {
	return client.Database(DatabaseName()).Collection(collectionName)
}

// setupCollections ensures all necessary collections and indexes exist
func setupCollections(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := client.Database(DatabaseName())

	for _, collName := range []string{"users", "cars", "rentals", "notifications"} {
		db.CreateCollection(ctx, collName)
	}

	// Unique identity constraints
	userColl := db.Collection("users")
	userIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := userColl.Indexes().CreateMany(ctx, userIndexes); err != nil {
		log.Printf("Error creating user indexes: %v", err)
	}

	carColl := db.Collection("cars")
	plateIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "licensePlate", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := carColl.Indexes().CreateOne(ctx, plateIndex); err != nil {
		log.Printf("Error creating license plate index: %v", err)
	}

	// Query indexes for the overlap check and listings
	rentalColl := db.Collection("rentals")
	rentalIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "carId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "startDate", Value: 1}, {Key: "endDate", Value: 1}}},
	}
	if _, err := rentalColl.Indexes().CreateMany(ctx, rentalIndexes); err != nil {
		log.Printf("Error creating rental indexes: %v", err)
	}

	notifColl := db.Collection("notifications")
	notifIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isOpened", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := notifColl.Indexes().CreateMany(ctx, notifIndexes); err != nil {
		log.Printf("Error creating notification indexes: %v", err)
	}

	log.Println("Database collections and indexes setup complete")
}

// maskMongoURI masks the password in MongoDB URI for logging
func maskMongoURI(uri string) string {
	if idx := strings.Index(uri, "@"); idx > 0 {
		if colonIdx := strings.LastIndex(uri[:idx], ":"); colonIdx > 0 {
			return uri[:colonIdx+1] + "***" + uri[idx:]
		}
	}
	return uri
}
