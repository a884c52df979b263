package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiusdt/adbridge/internal/models"
	"github.com/radiusdt/adbridge/internal/platform"
)

// seedPublishedGraph stores one published campaign/adset/creative/ad chain
// and returns the records.
func seedPublishedGraph(t *testing.T, env *testEnv) (*models.Campaign, *models.AdSet, *models.Creative, *models.Ad) {
	t.Helper()
	ctx := context.Background()

	campaign := &models.Campaign{
		ID: "c-1", ExternalID: "ext-c-1", AccountID: "acc-1",
		Name: "Live campaign", Status: models.StatusActive,
		Objective: models.ObjectiveConversions, Budget: models.Budget{Daily: 20},
	}
	adset := &models.AdSet{
		ID: "as-1", ExternalID: "ext-as-1", CampaignID: "c-1",
		Name: "Live adset", Status: models.StatusActive,
		BidStrategy: models.BidStrategyLowestCost, Budget: models.Budget{Daily: 20},
	}
	creative := &models.Creative{
		ID: "cr-1", ExternalID: "ext-cr-1", Name: "Live creative",
		Status:  models.StatusActive,
		Content: models.CreativeContent{Title: "Old", LinkURL: "https://example.com"},
	}
	ad := &models.Ad{
		ID: "ad-1", ExternalID: "ext-ad-1", AdSetID: "as-1", CreativeID: "cr-1",
		Name: "Live ad", Status: models.StatusActive,
	}
	require.NoError(t, env.store.Campaigns.Upsert(ctx, campaign))
	require.NoError(t, env.store.AdSets.Upsert(ctx, adset))
	require.NoError(t, env.store.Creatives.Upsert(ctx, creative))
	require.NoError(t, env.store.Ads.Upsert(ctx, ad))
	return campaign, adset, creative, ad
}

func TestUpdateCreatesUnmatchedNodes(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	ctx := context.Background()

	forest := models.UpdateForest{
		AccountID: "acc-1",
		Campaigns: []models.CampaignNode{{
			Name:      "Brand new",
			Objective: models.ObjectiveTraffic,
			Budget:    &models.Budget{Daily: 15},
			AdSets: []models.AdSetNode{{
				Name:        "New adset",
				BidStrategy: models.BidStrategyLowestCost,
				Ads: []models.AdNode{{
					Name: "New ad",
					Creative: models.CreativeContent{
						Title: "Hello", LinkURL: "https://example.com",
					},
				}},
			}},
		}},
	}

	report, err := env.svc.UpdateFlexible(ctx, forest, testCreds())
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalCreated)
	assert.Equal(t, 0, report.TotalUpdated)
	assert.Equal(t, 0, report.TotalErrors)
	assert.Equal(t, 1, report.Details[models.KindCampaign].Created)
	assert.Equal(t, 1, report.Details[models.KindAdSet].Created)
	assert.Equal(t, 1, report.Details[models.KindAd].Created)

	campaigns, err := env.store.Campaigns.ListByAccount(ctx, "acc-1", false)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.NotEmpty(t, campaigns[0].ExternalID)
	assert.Equal(t, models.StatusPaused, campaigns[0].Status)

	// Creative was created alongside the ad.
	assert.Contains(t, env.remote.calls(), "create:creative")
	assert.Contains(t, env.remote.calls(), "create:ad")
}

func TestUpdateMatchedNodeRemoteFirst(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	campaign, _, _, _ := seedPublishedGraph(t, env)
	ctx := context.Background()

	forest := models.UpdateForest{
		AccountID: "acc-1",
		Campaigns: []models.CampaignNode{{
			ID:     campaign.ID,
			Name:   "Renamed",
			Status: models.StatusPaused,
		}},
	}

	report, err := env.svc.UpdateFlexible(ctx, forest, testCreds())
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalUpdated)
	assert.Equal(t, 0, report.TotalErrors)

	updates := env.remote.updatesFor("ext-c-1")
	require.Len(t, updates, 1)
	assert.Equal(t, "Renamed", updates[0]["name"])
	assert.Equal(t, "PAUSED", updates[0]["status"])

	stored, err := env.store.Campaigns.GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, models.StatusPaused, stored.Status)
	assert.False(t, stored.RemoteSyncPending)
}

func TestUpdateRemoteFailureKeepsLocalAndFlagsPending(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	campaign, _, _, _ := seedPublishedGraph(t, env)
	ctx := context.Background()

	env.remote.failUpdate["ext-c-1"] = &platform.Error{Code: 2, Message: "transient"}

	forest := models.UpdateForest{
		AccountID: "acc-1",
		Campaigns: []models.CampaignNode{{ID: campaign.ID, Name: "Renamed anyway"}},
	}

	report, err := env.svc.UpdateFlexible(ctx, forest, testCreds())
	require.NoError(t, err)

	// Counted as an update, not an error: the local write proceeded.
	assert.Equal(t, 1, report.TotalUpdated)
	assert.Equal(t, 0, report.TotalErrors)

	stored, err := env.store.Campaigns.GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed anyway", stored.Name)
	assert.True(t, stored.RemoteSyncPending)

	assert.Contains(t, env.auditTypes(), models.AuditRemoteUpdateMiss)
}

func TestUpdateAdSetRebindsWhenRemoteMissing(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	campaign, adset, _, _ := seedPublishedGraph(t, env)
	ctx := context.Background()

	env.remote.failUpdate["ext-as-1"] = &platform.Error{
		Code: platform.CodeObjectNotFound, Message: "object missing",
	}

	forest := models.UpdateForest{
		AccountID: "acc-1",
		Campaigns: []models.CampaignNode{{
			ID: campaign.ID,
			AdSets: []models.AdSetNode{{
				ID:   adset.ID,
				Name: "Renamed adset",
			}},
		}},
	}

	report, err := env.svc.UpdateFlexible(ctx, forest, testCreds())
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalErrors)

	stored, err := env.store.AdSets.GetByID(ctx, adset.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed adset", stored.Name)
	assert.NotEqual(t, "ext-as-1", stored.ExternalID)
	assert.NotEmpty(t, stored.ExternalID)
	assert.False(t, stored.RemoteSyncPending)
	assert.Contains(t, env.remote.calls(), "create:adset")
}

func TestUpdateUnmatchedAdCreatesCreativePair(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	campaign, adset, _, _ := seedPublishedGraph(t, env)
	ctx := context.Background()

	forest := models.UpdateForest{
		AccountID: "acc-1",
		Campaigns: []models.CampaignNode{{
			ID: campaign.ID,
			AdSets: []models.AdSetNode{{
				ID: adset.ID,
				Ads: []models.AdNode{{
					Name: "Second ad",
					Creative: models.CreativeContent{
						Title: "Fresh content", LinkURL: "https://example.com/2",
					},
				}},
			}},
		}},
	}

	report, err := env.svc.UpdateFlexible(ctx, forest, testCreds())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Details[models.KindAd].Created)

	ads, err := env.store.Ads.ListByAdSet(ctx, adset.ID, false)
	require.NoError(t, err)
	require.Len(t, ads, 2)

	assert.Contains(t, env.remote.calls(), "create:creative")
	assert.Contains(t, env.remote.calls(), "create:ad")
}

func TestUpdateMatchedAdIgnoresCreativeContent(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	campaign, adset, creative, ad := seedPublishedGraph(t, env)
	ctx := context.Background()

	forest := models.UpdateForest{
		AccountID: "acc-1",
		Campaigns: []models.CampaignNode{{
			ID: campaign.ID,
			AdSets: []models.AdSetNode{{
				ID: adset.ID,
				Ads: []models.AdNode{{
					ID:   ad.ID,
					Name: "Renamed ad",
					Creative: models.CreativeContent{
						Title: "This must not be applied",
					},
				}},
			}},
		}},
	}

	report, err := env.svc.UpdateFlexible(ctx, forest, testCreds())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Details[models.KindAd].Updated)

	// No new creative: content on a matched node is never applied.
	assert.NotContains(t, env.remote.calls(), "create:creative")

	storedCreative, err := env.store.Creatives.GetByID(ctx, creative.ID)
	require.NoError(t, err)
	assert.Equal(t, "Old", storedCreative.Content.Title)

	storedAd, err := env.store.Ads.GetByID(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed ad", storedAd.Name)
	assert.Equal(t, creative.ID, storedAd.CreativeID)
}

func TestUpdateAdPairUnwindsCreativeOnAdFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	campaign, adset, _, _ := seedPublishedGraph(t, env)
	ctx := context.Background()

	env.remote.failCreate["ad"] = &platform.Error{Code: 1, Message: "ad rejected"}

	forest := models.UpdateForest{
		AccountID: "acc-1",
		Campaigns: []models.CampaignNode{{
			ID: campaign.ID,
			AdSets: []models.AdSetNode{{
				ID: adset.ID,
				Ads: []models.AdNode{{
					Name:     "Doomed ad",
					Creative: models.CreativeContent{Title: "x", LinkURL: "https://example.com"},
				}},
			}},
		}},
	}

	report, err := env.svc.UpdateFlexible(ctx, forest, testCreds())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Details[models.KindAd].Errored)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, models.KindAd, report.Errors[0].Kind)

	// The freshly created remote creative was compensated away.
	require.Len(t, env.remote.deletes(), 1)
	assert.Contains(t, env.remote.deletes()[0], "ext-creative")
}

func TestUpdateOneBadRootDoesNotBlockOthers(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	ctx := context.Background()

	env.remote.failCreate["campaign"] = &platform.Error{Code: 1, Message: "rejected"}

	// Both roots fail remotely, but each is reported on its own; the run
	// itself succeeds.
	forest := models.UpdateForest{
		AccountID: "acc-1",
		Campaigns: []models.CampaignNode{
			{Name: "first", Objective: models.ObjectiveTraffic},
			{Name: "second", Objective: models.ObjectiveTraffic},
		},
	}

	report, err := env.svc.UpdateFlexible(ctx, forest, testCreds())
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalErrors)
	assert.Len(t, report.Errors, 2)
}

func TestUpdateScheduleChangeGoesRemote(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	campaign, _, _, _ := seedPublishedGraph(t, env)
	ctx := context.Background()

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	stop := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	forest := models.UpdateForest{
		AccountID: "acc-1",
		Campaigns: []models.CampaignNode{{
			ID:       campaign.ID,
			Schedule: &models.Schedule{StartAt: start, StopAt: stop},
		}},
	}

	report, err := env.svc.UpdateFlexible(ctx, forest, testCreds())
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalUpdated)

	// A schedule-only change is still pushed remote-first.
	updates := env.remote.updatesFor("ext-c-1")
	require.Len(t, updates, 1)
	assert.Equal(t, "2026-10-01T00:00:00Z", updates[0]["start_time"])
	assert.Equal(t, "2026-11-01T00:00:00Z", updates[0]["stop_time"])

	stored, err := env.store.Campaigns.GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, start, stored.Schedule.StartAt)
	assert.False(t, stored.RemoteSyncPending)
}

func TestUpdateScheduleRemoteFailureFlagsPending(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	campaign, _, _, _ := seedPublishedGraph(t, env)
	ctx := context.Background()

	env.remote.failUpdate["ext-c-1"] = &platform.Error{Code: 2, Message: "transient"}

	forest := models.UpdateForest{
		AccountID: "acc-1",
		Campaigns: []models.CampaignNode{{
			ID:       campaign.ID,
			Schedule: &models.Schedule{StartAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)},
		}},
	}

	_, err := env.svc.UpdateFlexible(ctx, forest, testCreds())
	require.NoError(t, err)

	stored, err := env.store.Campaigns.GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.False(t, stored.Schedule.StartAt.IsZero())
	assert.True(t, stored.RemoteSyncPending)
}

func TestUpdateAdSetTargetingGoesRemote(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	campaign, adset, _, _ := seedPublishedGraph(t, env)
	ctx := context.Background()

	forest := models.UpdateForest{
		AccountID: "acc-1",
		Campaigns: []models.CampaignNode{{
			ID: campaign.ID,
			AdSets: []models.AdSetNode{{
				ID:        adset.ID,
				Targeting: &models.Targeting{Countries: []string{"DE", "FR"}},
			}},
		}},
	}

	_, err := env.svc.UpdateFlexible(ctx, forest, testCreds())
	require.NoError(t, err)

	updates := env.remote.updatesFor("ext-as-1")
	require.Len(t, updates, 1)
	spec, ok := updates[0]["targeting"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, spec, "countries")

	stored, err := env.store.AdSets.GetByID(ctx, adset.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"DE", "FR"}, stored.Targeting.Countries)
	assert.False(t, stored.RemoteSyncPending)
}

func TestUpdateBudgetOmitsZeroSide(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	campaign, _, _, _ := seedPublishedGraph(t, env)
	ctx := context.Background()

	forest := models.UpdateForest{
		AccountID: "acc-1",
		Campaigns: []models.CampaignNode{{
			ID:     campaign.ID,
			Budget: &models.Budget{Lifetime: 500},
		}},
	}

	_, err := env.svc.UpdateFlexible(ctx, forest, testCreds())
	require.NoError(t, err)

	// Daily and lifetime are mutually exclusive on the wire; the unset side
	// must not ride along as zero.
	updates := env.remote.updatesFor("ext-c-1")
	require.Len(t, updates, 1)
	assert.Equal(t, 500.0, updates[0]["lifetime_budget"])
	assert.NotContains(t, updates[0], "daily_budget")
}

func TestUpdatePanickedRootReportedAsError(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	ctx := context.Background()

	env.remote.panicCreate["campaign"] = true

	forest := models.UpdateForest{
		AccountID: "acc-1",
		Campaigns: []models.CampaignNode{{Name: "doomed", Objective: models.ObjectiveTraffic}},
	}

	report, err := env.svc.UpdateFlexible(ctx, forest, testCreds())
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalErrors)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Message, "panicked")
}

func TestUpdateAdPairBindsCreativeToAd(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	campaign, adset, _, _ := seedPublishedGraph(t, env)
	ctx := context.Background()

	forest := models.UpdateForest{
		AccountID: "acc-1",
		Campaigns: []models.CampaignNode{{
			ID: campaign.ID,
			AdSets: []models.AdSetNode{{
				ID: adset.ID,
				Ads: []models.AdNode{{
					Name:     "Paired ad",
					Creative: models.CreativeContent{Title: "Pair", LinkURL: "https://example.com/p"},
				}},
			}},
		}},
	}

	_, err := env.svc.UpdateFlexible(ctx, forest, testCreds())
	require.NoError(t, err)

	ads, err := env.store.Ads.ListByAdSet(ctx, adset.ID, false)
	require.NoError(t, err)
	for _, a := range ads {
		if a.Name != "Paired ad" {
			continue
		}
		cr, err := env.store.Creatives.GetByID(ctx, a.CreativeID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, cr.AdID)
	}
}

func TestUpdateUnknownAccount(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.UpdateFlexible(context.Background(), models.UpdateForest{AccountID: "nope"}, testCreds())
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestUpdateMissingCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	_, err := env.svc.UpdateFlexible(context.Background(), models.UpdateForest{AccountID: "acc-1"}, platform.Credentials{})
	assert.True(t, IsValidation(err))
}
