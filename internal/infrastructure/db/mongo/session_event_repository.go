package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const sessionEventsCollection = "session_events"

// SessionEventRepository writes the session audit trail.
type SessionEventRepository struct {
	db *mongo.Database
}

// NewSessionEventRepository creates a new SessionEventRepository.
func NewSessionEventRepository(db *mongo.Database) ports.SessionEventRepository {
	return &SessionEventRepository{db: db}
}

// Insert persists event to the session_events collection.
func (r *SessionEventRepository) Insert(ctx context.Context, event *domain.SessionEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"user_id":      event.UserID,
		"kind":         string(event.Kind),
		"at":           event.At.UTC(),
		"processed_at": time.Now().UTC(),
	}

	_, err := r.db.Collection(sessionEventsCollection).InsertOne(ctx, doc)
	return err
}
