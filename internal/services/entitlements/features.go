package entitlements

import (
	"slices"
	"time"
)

// Feature is a capability flag unlocked by a tier.
type Feature string

const (
	FeatureImageAttachments     Feature = "image-attachments"
	FeatureVoiceRecording       Feature = "voice-recording"
	FeatureOCR                  Feature = "ocr"
	FeatureAdvancedReminders    Feature = "advanced-reminders"
	FeatureLocationReminders    Feature = "location-reminders"
	FeatureAISummary            Feature = "ai-summary"
	FeatureTranslation          Feature = "translation"
	FeatureAdvancedImageEditing Feature = "advanced-image-editing"
	FeatureCustomTags           Feature = "custom-tags"
	FeatureTeamCollaboration    Feature = "team-collaboration"
)

var proFeatures = []Feature{
	FeatureImageAttachments,
	FeatureVoiceRecording,
	FeatureOCR,
	FeatureAdvancedReminders,
	FeatureLocationReminders,
}

var premiumOnly = []Feature{
	FeatureAISummary,
	FeatureTranslation,
	FeatureAdvancedImageEditing,
	FeatureCustomTags,
	FeatureTeamCollaboration,
}

// FeatureSet is an immutable set of features.
type FeatureSet map[Feature]struct{}

// Has reports whether f is in the set.
func (s FeatureSet) Has(f Feature) bool {
	_, ok := s[f]
	return ok
}

// List returns the features sorted by name, for stable output.
func (s FeatureSet) List() []Feature {
	out := make([]Feature, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// FeaturesFor returns the capability flags of a tier. Each tier's set is a
// strict superset of the tier below it; the free tier has none of the paid
// flags.
func FeaturesFor(t Tier) FeatureSet {
	set := FeatureSet{}
	switch t {
	case TierPremium:
		for _, f := range premiumOnly {
			set[f] = struct{}{}
		}
		fallthrough
	case TierPro:
		for _, f := range proFeatures {
			set[f] = struct{}{}
		}
	}
	return set
}

// CheckFeature fails with ErrFeatureLocked when the effective tier of sub
// lacks f.
func CheckFeature(sub Subscription, f Feature, now time.Time) error {
	if FeaturesFor(EffectiveTier(sub, now)).Has(f) {
		return nil
	}
	return &FeatureError{Feature: f, Tier: EffectiveTier(sub, now)}
}

// Summary is the read model of a profile's entitlement at a point in time.
type Summary struct {
	StoredTier    Tier      `json:"stored_tier"`
	EffectiveTier Tier      `json:"effective_tier"`
	Active        bool      `json:"active"`
	NotesPerMonth int       `json:"notes_per_month"`
	Features      []Feature `json:"features"`
}

// Summarize computes the entitlement read model for sub at now.
func Summarize(sub Subscription, now time.Time) Summary {
	eff := EffectiveTier(sub, now)
	return Summary{
		StoredTier:    sub.Tier,
		EffectiveTier: eff,
		Active:        IsEntitlementActive(sub, now),
		NotesPerMonth: QuotaFor(eff),
		Features:      FeaturesFor(eff).List(),
	}
}
