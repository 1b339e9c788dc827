// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package referral

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

const (
	referralsCollection  = "referrals"
	referrerOfCollection = "referrer_of"
	bonusCollection      = "bonus"
)

// Repository provides an interface for the referral graph and the manual bonus ledger.
//
//go:generate mockgen --destination=referral.mongodb.mock.go --package=referral . Repository
type Repository interface {
	Attribute(ctx context.Context, refereeID, referrerID string) (bool, error)
	ReferralCount(ctx context.Context, userID string) (int, error)
	TopReferrers(ctx context.Context, limit int) ([]ReferrerRank, error)
	BonusSlots(ctx context.Context, userID string) (int, error)
	SetBonusSlots(ctx context.Context, userID string, slots int) error
}

// ReferralMongoDBRepository is a MongoDB-specific implementation of the referral Repository.
type ReferralMongoDBRepository struct {
	connection *libMongo.MongoConnection
	Database   string
}

// NewReferralMongoDBRepository returns a new instance of ReferralMongoDBRepository using the given MongoDB connection.
func NewReferralMongoDBRepository(mc *libMongo.MongoConnection) *ReferralMongoDBRepository {
	r := &ReferralMongoDBRepository{
		connection: mc,
		Database:   mc.Database,
	}
	if _, err := r.connection.GetDB(context.Background()); err != nil {
		panic("Failed to connect mongo")
	}

	return r
}

func (rr *ReferralMongoDBRepository) collection(db *mongo.Client, name string) *mongo.Collection {
	return db.Database(strings.ToLower(rr.Database)).Collection(name)
}

// Attribute records the referrer-of edge for the referee and appends the
// referee to the referrer's list. The first write wins: a referee that already
// has a referrer makes this a no-op and the call reports recorded=false.
// Self-referral must be rejected by the caller before reaching the store.
func (rr *ReferralMongoDBRepository) Attribute(ctx context.Context, refereeID, referrerID string) (bool, error) {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "mongodb.attribute_referral")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.referee_id", refereeID),
		attribute.String("app.request.referrer_id", referrerID),
	)

	db, err := rr.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database", err)

		return false, err
	}

	edge := ReferrerOfMongoDBModel{
		RefereeID:  refereeID,
		ReferrerID: referrerID,
	}

	_, err = rr.collection(db, referrerOfCollection).InsertOne(ctx, edge)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Referee already attributed; first write wins.
			return false, nil
		}

		libOpentelemetry.HandleSpanError(&span, "Failed to record referrer edge", err)

		logger.Errorf("Failed to record referrer edge %s->%s: %v", referrerID, refereeID, err)

		return false, err
	}

	update := bson.M{"$addToSet": bson.M{"referees": refereeID}}

	_, err = rr.collection(db, referralsCollection).UpdateOne(ctx, bson.M{"_id": referrerID}, update, options.Update().SetUpsert(true))
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to append referee to referral list", err)

		logger.Errorf("Failed to append referee %s to referral list of %s: %v", refereeID, referrerID, err)

		return false, err
	}

	return true, nil
}

// ReferralCount returns the number of referees recruited by the user. An
// absent list counts as zero.
func (rr *ReferralMongoDBRepository) ReferralCount(ctx context.Context, userID string) (int, error) {
	_, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "mongodb.referral_count")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.user_id", userID),
	)

	db, err := rr.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database", err)

		return 0, err
	}

	var record ReferralListMongoDBModel

	err = rr.collection(db, referralsCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}

		libOpentelemetry.HandleSpanError(&span, "Failed to find referral list", err)

		return 0, err
	}

	return len(record.Referees), nil
}

// TopReferrers returns the users with the most referrals, descending.
func (rr *ReferralMongoDBRepository) TopReferrers(ctx context.Context, limit int) ([]ReferrerRank, error) {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "mongodb.top_referrers")
	defer span.End()

	db, err := rr.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database", err)

		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.M{"referrals": bson.M{"$size": bson.M{"$ifNull": bson.A{"$referees", bson.A{}}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "referrals", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := rr.collection(db, referralsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to aggregate top referrers", err)

		logger.Errorf("Failed to aggregate top referrers: %v", err)

		return nil, err
	}

	defer func() {
		if err := cursor.Close(ctx); err != nil {
			logger.Errorf("Failed to close top referrers cursor: %v", err)
		}
	}()

	ranks := make([]ReferrerRank, 0, limit)

	if err := cursor.All(ctx, &ranks); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to decode top referrers", err)

		return nil, err
	}

	return ranks, nil
}

// BonusSlots returns the manually granted extra slots of the user, zero when absent.
func (rr *ReferralMongoDBRepository) BonusSlots(ctx context.Context, userID string) (int, error) {
	_, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "mongodb.bonus_slots")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.user_id", userID),
	)

	db, err := rr.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database", err)

		return 0, err
	}

	var record BonusMongoDBModel

	err = rr.collection(db, bonusCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}

		libOpentelemetry.HandleSpanError(&span, "Failed to find bonus slots", err)

		return 0, err
	}

	return record.Slots, nil
}

// SetBonusSlots sets the manually granted extra slots of the user.
func (rr *ReferralMongoDBRepository) SetBonusSlots(ctx context.Context, userID string, slots int) error {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "mongodb.set_bonus_slots")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.user_id", userID),
		attribute.Int("app.request.slots", slots),
	)

	db, err := rr.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database", err)

		return err
	}

	update := bson.M{"$set": bson.M{"slots": slots, "updatedAt": time.Now().UTC()}}

	_, err = rr.collection(db, bonusCollection).UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to set bonus slots", err)

		logger.Errorf("Failed to set bonus slots for user %s: %v", userID, err)

		return err
	}

	return nil
}
