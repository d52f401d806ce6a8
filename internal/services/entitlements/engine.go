package entitlements

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SubscriptionWriter persists tier transitions on a profile.
type SubscriptionWriter interface {
	UpdateSubscription(ctx context.Context, profileID string, sub Subscription) error
}

// Engine owns the tier state machine. ApplyBillingConfirmation is the only
// code path that writes a profile's tier fields.
type Engine struct {
	store SubscriptionWriter
	log   *slog.Logger
}

// NewEngine creates a new entitlement engine
func NewEngine(store SubscriptionWriter, log *slog.Logger) *Engine {
	return &Engine{
		store: store,
		log:   log,
	}
}

// ApplyBillingConfirmation moves profileID to tier for [periodStart, periodEnd).
// Confirmations for the free tier, unknown tiers, or empty periods are rejected
// with ErrInvalidConfirmation; the stored state is left untouched.
func (e *Engine) ApplyBillingConfirmation(ctx context.Context, profileID string, tier Tier, periodStart, periodEnd time.Time) error {
	if !tier.Paid() {
		return fmt.Errorf("%w: tier %q is not purchasable", ErrInvalidConfirmation, tier)
	}
	if !periodEnd.After(periodStart) {
		return fmt.Errorf("%w: period end %s is not after start %s", ErrInvalidConfirmation,
			periodEnd.Format(time.RFC3339), periodStart.Format(time.RFC3339))
	}

	start := periodStart.UTC()
	end := periodEnd.UTC()
	sub := Subscription{Tier: tier, Start: &start, End: &end}

	if err := e.store.UpdateSubscription(ctx, profileID, sub); err != nil {
		e.log.Error("failed to apply billing confirmation", "error", err, "user_id", profileID, "tier", tier)
		return fmt.Errorf("apply billing confirmation: %w", err)
	}

	e.log.Info("subscription updated", "user_id", profileID, "tier", tier, "period_end", end)
	return nil
}
