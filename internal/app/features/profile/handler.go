// internal/app/features/profile/handler.go
package profile

import (
	userstore "github.com/corkboardhq/corkboard/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the account profile handlers.
type Handler struct {
	DB    *mongo.Database
	Log   *zap.Logger
	Users *userstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:    db,
		Log:   logger,
		Users: userstore.New(db),
	}
}
