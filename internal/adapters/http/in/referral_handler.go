// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"crypto/subtle"

	"github.com/LerianStudio/pagehost/internal/services"
	"github.com/LerianStudio/pagehost/pkg"
	"github.com/LerianStudio/pagehost/pkg/constant"
	"github.com/LerianStudio/pagehost/pkg/model"
	"github.com/LerianStudio/pagehost/pkg/net/http"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	"github.com/gofiber/fiber/v2"
)

const leaderboardSize = 10

// ReferralHandler exposes referral attribution, the admin bonus grant and the
// leaderboard over HTTP.
type ReferralHandler struct {
	Service *services.UseCase

	// AdminID is the static identifier the bonus grant is gated on. Real
	// authorization lives with the collaborator in front of this service.
	AdminID string
}

// StartSession records the optional referrer handed over on first contact.
// Attribution is idempotent and first write wins, so replays are harmless.
func (rh *ReferralHandler) StartSession(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()

	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.start_session")
	defer span.End()

	c.SetUserContext(ctx)

	userID := c.Params("user_id")
	payload := p.(*model.StartSessionInput)

	recorded, err := rh.Service.AttributeReferral(ctx, userID, payload.ReferrerID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to attribute referral", err)

		return http.WithError(c, err)
	}

	return http.OK(c, model.StartSessionResponse{ReferralRecorded: recorded})
}

// GrantBonus sets the manually granted extra slots of the user. Gated on the
// static admin identifier.
func (rh *ReferralHandler) GrantBonus(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()

	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.grant_bonus")
	defer span.End()

	c.SetUserContext(ctx)

	caller := c.Get("X-Admin-Id")
	if rh.AdminID == "" || subtle.ConstantTimeCompare([]byte(caller), []byte(rh.AdminID)) != 1 {
		logger.Warnf("Rejecting bonus grant from non-admin caller")

		return http.WithError(c, pkg.ValidateBusinessError(constant.ErrNotAuthorized, "Bonus"))
	}

	userID := c.Params("user_id")
	payload := p.(*model.GrantBonusInput)

	if err := rh.Service.GrantBonusSlots(ctx, userID, *payload.BonusSlots); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to grant bonus slots", err)

		return http.WithError(c, err)
	}

	return http.NoContent(c)
}

// Leaderboard returns the users with the most referrals.
func (rh *ReferralHandler) Leaderboard(c *fiber.Ctx) error {
	ctx := c.UserContext()

	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.referral_leaderboard")
	defer span.End()

	c.SetUserContext(ctx)

	board, err := rh.Service.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to build leaderboard", err)

		return http.WithError(c, err)
	}

	return http.OK(c, board)
}
