package entitlements

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturesFor(t *testing.T) {
	free := FeaturesFor(TierFree)
	pro := FeaturesFor(TierPro)
	premium := FeaturesFor(TierPremium)

	assert.Empty(t, free)
	assert.Len(t, pro, 5)
	assert.Len(t, premium, 10)

	for f := range pro {
		assert.True(t, premium.Has(f), "premium must include %s", f)
	}
	assert.True(t, pro.Has(FeatureLocationReminders))
	assert.False(t, pro.Has(FeatureAISummary))
	assert.True(t, premium.Has(FeatureTeamCollaboration))
	assert.Empty(t, FeaturesFor("gold"))
}

func TestFeatureSet_ListIsSorted(t *testing.T) {
	list := FeaturesFor(TierPremium).List()
	require.Len(t, list, 10)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1], list[i])
	}
}

func TestCheckFeature(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	err := CheckFeature(Subscription{Tier: TierFree}, FeatureImageAttachments, now)
	require.ErrorIs(t, err, ErrFeatureLocked)

	var fe *FeatureError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FeatureImageAttachments, fe.Feature)
	assert.Equal(t, TierFree, fe.Tier)

	assert.NoError(t, CheckFeature(Subscription{Tier: TierPro}, FeatureImageAttachments, now))
	assert.ErrorIs(t, CheckFeature(Subscription{Tier: TierPro}, FeatureAISummary, now), ErrFeatureLocked)

	expired := Subscription{Tier: TierPremium, End: ptr(now.Add(-time.Second))}
	assert.ErrorIs(t, CheckFeature(expired, FeatureImageAttachments, now), ErrFeatureLocked)
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	s := Summarize(Subscription{Tier: TierPro, End: ptr(now.Add(-time.Hour))}, now)
	assert.Equal(t, TierPro, s.StoredTier)
	assert.Equal(t, TierFree, s.EffectiveTier)
	assert.False(t, s.Active)
	assert.Equal(t, FreeNotesPerMonth, s.NotesPerMonth)
	assert.Empty(t, s.Features)

	s = Summarize(Subscription{Tier: TierPremium}, now)
	assert.Equal(t, TierPremium, s.EffectiveTier)
	assert.True(t, s.Active)
	assert.Equal(t, Unlimited, s.NotesPerMonth)
	assert.Len(t, s.Features, 10)
}
