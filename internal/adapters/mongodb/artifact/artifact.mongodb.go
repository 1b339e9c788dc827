// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package artifact

import (
	"context"
	"errors"
	"strings"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libMongo "github.com/LerianStudio/lib-commons/v3/commons/mongo"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
)

// ErrVersionConflict is returned by Replace when the sequence changed between
// the caller's read and the rewrite attempt.
var ErrVersionConflict = errors.New("artifact sequence version conflict")

const collectionName = "artifacts"

// Repository provides an interface for the per-user ordered artifact sequences.
//
//go:generate mockgen --destination=artifact.mongodb.mock.go --package=artifact . Repository
type Repository interface {
	List(ctx context.Context, userID string) ([]Artifact, int64, error)
	Append(ctx context.Context, userID string, a Artifact) error
	Replace(ctx context.Context, userID string, artifacts []Artifact, version int64) error
	ListOwners(ctx context.Context) ([]string, error)
}

// ArtifactMongoDBRepository is a MongoDB-specific implementation of the artifact Repository.
type ArtifactMongoDBRepository struct {
	connection *libMongo.MongoConnection
	Database   string
}

// NewArtifactMongoDBRepository returns a new instance of ArtifactMongoDBRepository using the given MongoDB connection.
func NewArtifactMongoDBRepository(mc *libMongo.MongoConnection) *ArtifactMongoDBRepository {
	r := &ArtifactMongoDBRepository{
		connection: mc,
		Database:   mc.Database,
	}
	if _, err := r.connection.GetDB(context.Background()); err != nil {
		panic("Failed to connect mongo")
	}

	return r
}

func (ar *ArtifactMongoDBRepository) collection(db *mongo.Client) *mongo.Collection {
	return db.Database(strings.ToLower(ar.Database)).Collection(collectionName)
}

// List returns the append-ordered artifact sequence of the user along with the
// sequence version. A user without a document has an empty sequence at version zero.
func (ar *ArtifactMongoDBRepository) List(ctx context.Context, userID string) ([]Artifact, int64, error) {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "mongodb.list_artifacts")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.user_id", userID),
	)

	db, err := ar.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database", err)

		return nil, 0, err
	}

	var record ArtifactSequenceMongoDBModel

	err = ar.collection(db).FindOne(ctx, bson.M{"_id": userID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []Artifact{}, 0, nil
		}

		libOpentelemetry.HandleSpanError(&span, "Failed to find artifact sequence", err)

		logger.Errorf("Failed to find artifact sequence for user %s: %v", userID, err)

		return nil, 0, err
	}

	if record.Artifacts == nil {
		record.Artifacts = []Artifact{}
	}

	return record.Artifacts, record.Version, nil
}

// Append adds an artifact to the end of the user's sequence. The push is a
// single-document atomic operation, so concurrent appends for the same user
// cannot lose each other's writes.
func (ar *ArtifactMongoDBRepository) Append(ctx context.Context, userID string, a Artifact) error {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "mongodb.append_artifact")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.user_id", userID),
		attribute.String("app.request.artifact_path", a.Path),
	)

	db, err := ar.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database", err)

		return err
	}

	update := bson.M{
		"$push": bson.M{"artifacts": a},
		"$inc":  bson.M{"version": 1},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	_, err = ar.collection(db).UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to append artifact", err)

		logger.Errorf("Failed to append artifact for user %s: %v", userID, err)

		return err
	}

	return nil
}

// Replace rewrites the user's whole sequence, guarded by the version read by
// the caller. Returns ErrVersionConflict when the sequence moved underneath.
func (ar *ArtifactMongoDBRepository) Replace(ctx context.Context, userID string, artifacts []Artifact, version int64) error {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "mongodb.replace_artifacts")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.user_id", userID),
		attribute.Int("app.request.artifact_count", len(artifacts)),
	)

	db, err := ar.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database", err)

		return err
	}

	if artifacts == nil {
		artifacts = []Artifact{}
	}

	update := bson.M{
		"$set": bson.M{
			"artifacts": artifacts,
			"updatedAt": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := ar.collection(db).UpdateOne(ctx, bson.M{"_id": userID, "version": version}, update)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to replace artifact sequence", err)

		logger.Errorf("Failed to replace artifact sequence for user %s: %v", userID, err)

		return err
	}

	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}

	return nil
}

// ListOwners returns the ids of every user that owns at least one artifact record.
// Used by the expiry sweeper to walk the whole store.
func (ar *ArtifactMongoDBRepository) ListOwners(ctx context.Context) ([]string, error) {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "mongodb.list_artifact_owners")
	defer span.End()

	db, err := ar.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database", err)

		return nil, err
	}

	cursor, err := ar.collection(db).Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to list artifact owners", err)

		logger.Errorf("Failed to list artifact owners: %v", err)

		return nil, err
	}

	defer func() {
		if err := cursor.Close(ctx); err != nil {
			logger.Errorf("Failed to close owners cursor: %v", err)
		}
	}()

	owners := make([]string, 0)

	for cursor.Next(ctx) {
		var doc struct {
			UserID string `bson:"_id"`
		}

		if err := cursor.Decode(&doc); err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to decode owner document", err)

			return nil, err
		}

		owners = append(owners, doc.UserID)
	}

	if err := cursor.Err(); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Owners cursor failed", err)

		return nil, err
	}

	return owners, nil
}
