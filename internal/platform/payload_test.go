package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiusdt/adbridge/internal/models"
)

func TestBuildCampaignPayload(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := &models.Campaign{
		Name:      "Spring",
		Objective: models.ObjectiveConversions,
		Status:    models.StatusDraft,
		Budget:    models.Budget{Daily: 40},
		Schedule:  models.Schedule{StartAt: start},
	}

	p := BuildCampaignPayload(c)
	assert.Equal(t, "Spring", p.Name)
	assert.Equal(t, "conversions", p.Objective)
	// Drafts go out paused so nothing spends before explicit activation.
	assert.Equal(t, "PAUSED", p.Status)
	assert.Equal(t, 40.0, p.DailyBudget)
	assert.Equal(t, "2026-03-01T00:00:00Z", p.StartTime)
	assert.Empty(t, p.StopTime)
}

func TestBuildAdSetPayloadForwardsBidFields(t *testing.T) {
	amt := 3.5
	a := &models.AdSet{
		Name:        "US broad",
		BidStrategy: models.BidStrategyBidCap,
		BidAmount:   &amt,
		Targeting:   models.Targeting{Countries: []string{"US"}},
	}

	p := BuildAdSetPayload(a, "ext-campaign-1")
	assert.Equal(t, "ext-campaign-1", p.CampaignID)
	assert.Equal(t, "bid_cap", p.BidStrategy)
	require.NotNil(t, p.BidAmount)
	assert.Equal(t, 3.5, *p.BidAmount)
	require.NotNil(t, p.Targeting)
	assert.Contains(t, p.Targeting, "countries")
}

func TestBuildAdSetPayloadOmitsNilBid(t *testing.T) {
	a := &models.AdSet{Name: "x", BidStrategy: models.BidStrategyLowestCost}
	p := BuildAdSetPayload(a, "ext-c")
	assert.Nil(t, p.BidAmount)
}

func TestBuildCreativePayloadWhitelist(t *testing.T) {
	content := models.CreativeContent{
		Title:        "T",
		Body:         "B",
		ImageURL:     "https://cdn/i.png",
		LinkURL:      "https://example.com",
		CallToAction: "SHOP_NOW",
	}
	p := BuildCreativePayload("creative name", content)
	assert.Equal(t, "creative name", p.Name)
	assert.Equal(t, "T", p.Title)
	assert.Equal(t, "SHOP_NOW", p.CallToAction)
	assert.Empty(t, p.VideoURL)
}

func TestBuildAdPayloadReferencesRemoteIDs(t *testing.T) {
	a := &models.Ad{Name: "Ad one", Status: models.StatusDraft}
	p := BuildAdPayload(a, "ext-as", "ext-cr")
	assert.Equal(t, "ext-as", p.AdSetID)
	assert.Equal(t, "ext-cr", p.CreativeID)
	assert.Equal(t, "PAUSED", p.Status)
}

func TestStatusRoundTrip(t *testing.T) {
	assert.Equal(t, models.StatusActive, StatusFromRemote(StatusToRemote(models.StatusActive)))
	assert.Equal(t, models.StatusPaused, StatusFromRemote(StatusToRemote(models.StatusPaused)))
	// Draft and failed have no remote equivalent; both go out paused.
	assert.Equal(t, "PAUSED", StatusToRemote(models.StatusDraft))
	assert.Equal(t, "PAUSED", StatusToRemote(models.StatusFailed))
	assert.Equal(t, models.StatusPaused, StatusFromRemote("SOMETHING_NEW"))
}
