package entitlements

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded is matched by every *QuotaError.
var ErrQuotaExceeded = errors.New("monthly note quota exceeded")

// ErrFeatureLocked is matched by every *FeatureError.
var ErrFeatureLocked = errors.New("feature not available on current tier")

// ErrUnknownTier is returned when parsing an unknown tier name.
var ErrUnknownTier = errors.New("unknown subscription tier")

// ErrInvalidConfirmation is returned for billing confirmations that cannot be applied.
var ErrInvalidConfirmation = errors.New("invalid billing confirmation")

// ErrProductNotFound is returned for an unknown product id.
var ErrProductNotFound = errors.New("product not found")

// ErrBilling is matched by every *BillingError.
var ErrBilling = errors.New("billing failed")

// ErrPurchaseNotFound is returned when a purchase record does not exist.
var ErrPurchaseNotFound = errors.New("purchase not found")

// ErrRecordPurchase is returned when a successful purchase could not be stored.
var ErrRecordPurchase = errors.New("failed to record purchase")

// QuotaError is returned when a capped tier has used its monthly allowance.
// Upgrading or waiting for the next month clears it.
type QuotaError struct {
	Limit int
	Used  int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s: %d of %d notes used this month", ErrQuotaExceeded.Error(), e.Used, e.Limit)
}

func (e *QuotaError) Is(target error) bool { return target == ErrQuotaExceeded }

// FeatureError names the locked feature and the tier that lacks it.
type FeatureError struct {
	Feature Feature
	Tier    Tier
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("%s: %s requires an upgrade from %s", ErrFeatureLocked.Error(), e.Feature, e.Tier)
}

func (e *FeatureError) Is(target error) bool { return target == ErrFeatureLocked }

// BillingError carries the billing provider's failure verbatim.
type BillingError struct {
	Message string
	Err     error
}

func (e *BillingError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *BillingError) Unwrap() error { return e.Err }

func (e *BillingError) Is(target error) bool { return target == ErrBilling }
