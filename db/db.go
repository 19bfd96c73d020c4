package db

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	AdminsCollection       *mongo.Collection
	EventsCollection       *mongo.Collection
	AttendeesCollection    *mongo.Collection
	AccessGrantsCollection *mongo.Collection
	PaymentsCollection     *mongo.Collection
	Client                 *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("db: no .env file found; using system environment")
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	Client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("entradadb")
	AdminsCollection = database.Collection("admins")
	EventsCollection = database.Collection("events")
	AttendeesCollection = database.Collection("attendees")
	AccessGrantsCollection = database.Collection("accessgrants")
	PaymentsCollection = database.Collection("payments")
}

// EnsureIndexes creates the uniqueness and lookup indexes the handlers
// rely on. Called once from main.
func EnsureIndexes(ctx context.Context) error {
	_, err := EventsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "namekey", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_namekey"),
		},
		{
			Keys:    bson.D{{Key: "eventid", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_eventid"),
		},
	})
	if err != nil {
		return err
	}

	_, err = AttendeesCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "qrtoken", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_qrtoken"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "eventid", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_email_event"),
		},
	})
	if err != nil {
		return err
	}

	_, err = AdminsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_email"),
		},
		{
			Keys:    bson.D{{Key: "companykey", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_companykey"),
		},
	})
	if err != nil {
		return err
	}

	_, err = AccessGrantsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "company", Value: 1}, {Key: "eventid", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_company_event"),
	})
	return err
}
