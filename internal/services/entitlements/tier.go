package entitlements

import (
	"fmt"
	"strings"
	"time"
)

// Tier is a subscription level. Every profile starts at TierFree.
type Tier string

const (
	TierFree    Tier = "free"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

// Unlimited is the quota value for tiers without a monthly note cap.
const Unlimited = -1

// FreeNotesPerMonth is the monthly note allowance of the free tier.
const FreeNotesPerMonth = 5

// ParseTier accepts the canonical lower-case names, case-insensitively.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
	return t, nil
}

// Valid reports whether t is one of the three known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPro, TierPremium:
		return true
	}
	return false
}

// Paid reports whether t is above the free tier.
func (t Tier) Paid() bool {
	return t == TierPro || t == TierPremium
}

// Subscription is the tier state stored on a profile.
type Subscription struct {
	Tier  Tier
	Start *time.Time
	End   *time.Time
}

// IsEntitlementActive reports whether the paid tier in sub is still in force
// at now. The free tier never expires. A paid tier without an end timestamp
// is treated as open-ended.
func IsEntitlementActive(sub Subscription, now time.Time) bool {
	if !sub.Tier.Paid() {
		return true
	}
	if sub.End == nil {
		return true
	}
	return now.Before(*sub.End)
}

// EffectiveTier is the tier used for gating. An expired paid tier gates as
// free; the stored tier is never rewritten here.
func EffectiveTier(sub Subscription, now time.Time) Tier {
	if !sub.Tier.Valid() {
		return TierFree
	}
	if !IsEntitlementActive(sub, now) {
		return TierFree
	}
	return sub.Tier
}

// QuotaFor returns the number of notes a tier may create per calendar month,
// or Unlimited.
func QuotaFor(t Tier) int {
	if t.Paid() {
		return Unlimited
	}
	return FreeNotesPerMonth
}

// CheckCanCreateNote fails with a *QuotaError when the effective tier is
// capped and currentMonthNoteCount has reached the cap.
func CheckCanCreateNote(sub Subscription, currentMonthNoteCount int, now time.Time) error {
	limit := QuotaFor(EffectiveTier(sub, now))
	if limit == Unlimited {
		return nil
	}
	if currentMonthNoteCount >= limit {
		return &QuotaError{Limit: limit, Used: currentMonthNoteCount}
	}
	return nil
}

// MonthStart returns midnight of the first day of the month containing now,
// in loc. It bounds the quota period.
func MonthStart(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}
