package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/broiler/internal/domain/models"
)

const (
	sessionsCollection = "catch_sessions"
	harvestCollection  = "harvest_records"
)

// Repository stores catch sessions and harvest records in MongoDB.
type Repository struct {
	client   *mongo.Client
	sessions *mongo.Collection
	harvest  *mongo.Collection
	now      func() time.Time
}

// NewRepository connects to MongoDB and prepares the catch collections.
func NewRepository(ctx context.Context, uri string, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	repo := &Repository{
		client:   client,
		sessions: db.Collection(sessionsCollection),
		harvest:  db.Collection(harvestCollection),
		now:      time.Now,
	}

	if err := repo.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return repo, nil
}

func (r *Repository) ensureIndexes(ctx context.Context) error {
	_, err := r.sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "flock_id", Value: 1}, {Key: "catch_date", Value: -1}}},
		{Keys: bson.D{{Key: "batches.id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}
	_, err = r.harvest.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create harvest index: %w", err)
	}
	return nil
}

// Create inserts a new session at version 1.
func (r *Repository) Create(ctx context.Context, session *models.CatchSession) error {
	session.Version = 1
	if _, err := r.sessions.InsertOne(ctx, toDocument(session)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: session %s already exists", models.ErrInvalidState, session.ID)
		}
		return fmt.Errorf("failed to insert catch session: %w", err)
	}
	return nil
}

// Get loads a session by id.
func (r *Repository) Get(ctx context.Context, sessionID string) (*models.CatchSession, error) {
	var doc sessionDocument
	err := r.sessions.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: catch session %s", models.ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load catch session %s: %w", sessionID, err)
	}
	return doc.toSession()
}

// Save replaces the stored session only if it is still at session.Version.
func (r *Repository) Save(ctx context.Context, session *models.CatchSession) error {
	doc := toDocument(session)
	doc.Version = session.Version + 1

	res, err := r.sessions.ReplaceOne(ctx, bson.M{"_id": session.ID, "version": session.Version}, doc)
	if err != nil {
		return fmt.Errorf("failed to replace catch session %s: %w", session.ID, err)
	}
	if res.MatchedCount == 0 {
		n, err := r.sessions.CountDocuments(ctx, bson.M{"_id": session.ID})
		if err != nil {
			return fmt.Errorf("failed to check catch session %s: %w", session.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: catch session %s", models.ErrNotFound, session.ID)
		}
		return fmt.Errorf("%w: session %s changed since version %d", models.ErrVersionConflict, session.ID, session.Version)
	}
	session.Version = doc.Version
	return nil
}

// FindByBatch returns the id of the session owning a batch.
func (r *Repository) FindByBatch(ctx context.Context, batchID string) (string, error) {
	var doc struct {
		ID string `bson:"_id"`
	}
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := r.sessions.FindOne(ctx, bson.M{"batches.id": batchID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("%w: catch batch %s", models.ErrNotFound, batchID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to find batch %s: %w", batchID, err)
	}
	return doc.ID, nil
}

// ListByFlock returns a flock's sessions, newest catch date first.
func (r *Repository) ListByFlock(ctx context.Context, flockID string) ([]*models.CatchSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "catch_date", Value: -1}})
	cursor, err := r.sessions.Find(ctx, bson.M{"flock_id": flockID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for flock %s: %w", flockID, err)
	}
	var docs []sessionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode sessions for flock %s: %w", flockID, err)
	}

	out := make([]*models.CatchSession, 0, len(docs))
	for _, doc := range docs {
		session, err := doc.toSession()
		if err != nil {
			return nil, fmt.Errorf("stored session %s: %w", doc.ID, err)
		}
		out = append(out, session)
	}
	return out, nil
}

// CreateHarvestRecord stores the harvest record of a completed session. A
// session has at most one record: recording it again replaces the figures and
// returns the existing id.
func (r *Repository) CreateHarvestRecord(ctx context.Context, req models.HarvestRequest) (string, error) {
	if req.SessionID == "" {
		return "", fmt.Errorf("%w: harvest record needs a session id", models.ErrInvalidInput)
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = r.now().UTC()
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc harvestDocument
	err := r.harvest.FindOneAndUpdate(ctx, bson.M{"session_id": req.SessionID}, harvestUpsert(req, uuid.NewString()), opts).Decode(&doc)
	if err != nil {
		return "", fmt.Errorf("failed to upsert harvest record for session %s: %w", req.SessionID, err)
	}
	return doc.ID, nil
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
