// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// Services is filled in by Startup and read by BuildHandler and Shutdown;
// it is a pointer so all three hooks share one value.
type DBDeps struct {
	EstateHubMongoClient   *mongo.Client
	EstateHubMongoDatabase *mongo.Database
	Services               *Services
}
