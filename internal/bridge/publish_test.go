package bridge

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiusdt/adbridge/internal/models"
	"github.com/radiusdt/adbridge/internal/platform"
)

func TestPublishSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	ctx := context.Background()

	result, err := env.svc.Publish(ctx, validGraph(), testCreds(), false)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, []string{
		"create:campaign",
		"create:adset",
		"create:creative",
		"create:ad",
	}, env.remote.calls())

	assert.NotEmpty(t, result.Campaign.ExternalID)
	assert.NotEmpty(t, result.AdSet.ExternalID)
	assert.NotEmpty(t, result.Creative.ExternalID)
	assert.NotEmpty(t, result.Ad.ExternalID)
	assert.Equal(t, models.StatusPaused, result.Campaign.Status)
	assert.Equal(t, models.StatusPaused, result.Ad.Status)
	assert.False(t, result.DryRun)

	stored, err := env.store.Campaigns.GetByID(ctx, result.Campaign.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, result.Campaign.ExternalID, stored.ExternalID)

	types := env.auditTypes()
	assert.Contains(t, types, models.AuditPublishAttempt)
	assert.Contains(t, types, models.AuditPublishSucceeded)
}

func TestPublishWiresParentIDs(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	ctx := context.Background()

	result, err := env.svc.Publish(ctx, validGraph(), testCreds(), false)
	require.NoError(t, err)

	assert.Equal(t, "acc-1", result.Campaign.AccountID)
	assert.Equal(t, result.Campaign.ID, result.AdSet.CampaignID)
	assert.Equal(t, result.AdSet.ID, result.Ad.AdSetID)
	assert.Equal(t, result.Creative.ID, result.Ad.CreativeID)
	assert.Equal(t, result.Ad.ID, result.Creative.AdID)

	// The back-reference is persisted, not just set on the result.
	stored, err := env.store.Creatives.GetByID(ctx, result.Creative.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Ad.ID, stored.AdID)
}

func TestPublishFailureAtAdUnwindsInReverse(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	ctx := context.Background()

	cause := &platform.Error{Code: 1, Message: "ad rejected", UserMessage: "Your ad was rejected."}
	env.remote.failCreate["ad"] = cause

	result, err := env.svc.Publish(ctx, validGraph(), testCreds(), false)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, error(cause))

	// Three successful creates get three deletes, newest first.
	assert.Equal(t, []string{"ext-creative-3", "ext-adset-2", "ext-campaign-1"}, env.remote.deletes())

	// All four drafts are FAILED with the user-facing note.
	campaigns, err := env.store.Campaigns.ListByAccount(ctx, "acc-1", false)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, models.StatusFailed, campaigns[0].Status)
	assert.Equal(t, "Your ad was rejected.", campaigns[0].ErrorNote)

	adsets, err := env.store.AdSets.ListByCampaign(ctx, campaigns[0].ID, false)
	require.NoError(t, err)
	require.Len(t, adsets, 1)
	assert.Equal(t, models.StatusFailed, adsets[0].Status)

	ads, err := env.store.Ads.ListByAdSet(ctx, adsets[0].ID, false)
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, models.StatusFailed, ads[0].Status)

	assert.Contains(t, env.auditTypes(), models.AuditPublishFailed)
	assert.Contains(t, env.auditTypes(), models.AuditCompensation)
}

func TestPublishCompensationFailureDoesNotStopUnwind(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	ctx := context.Background()

	env.remote.failCreate["ad"] = &platform.Error{Code: 1, Message: "boom"}
	env.remote.failDelete["ext-adset-2"] = &platform.Error{Code: 17, Message: "rate limited"}

	_, err := env.svc.Publish(ctx, validGraph(), testCreds(), false)
	require.Error(t, err)

	// The adset delete failed but the campaign delete still ran.
	assert.Equal(t, []string{"ext-creative-3", "ext-campaign-1"}, env.remote.deletes())
}

func TestPublishDryRunMakesNoRemoteCalls(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	ctx := context.Background()

	result, err := env.svc.Publish(ctx, validGraph(), testCreds(), true)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.DryRun)
	assert.Empty(t, env.remote.calls())
	assert.True(t, strings.HasPrefix(result.Campaign.ExternalID, "dryrun_"))
	assert.True(t, strings.HasPrefix(result.Ad.ExternalID, "dryrun_"))

	// Drafts persist without external ids; nothing was published.
	stored, err := env.store.Campaigns.GetByID(ctx, result.Drafts.Campaign)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.StatusDraft, stored.Status)
	assert.Empty(t, stored.ExternalID)
}

func TestPublishValidationFailsBeforeRemote(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)

	graph := models.PublishGraph{AccountID: "acc-1"}
	_, err := env.svc.Publish(context.Background(), graph, testCreds(), false)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Empty(t, env.remote.calls())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Fields)
}

func TestPublishCollectsAllValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)

	graph := models.PublishGraph{
		AccountID: "acc-1",
		Campaign: models.Campaign{
			Name:      "bad budget",
			Objective: models.ObjectiveTraffic,
			Budget:    models.Budget{Daily: 10, Lifetime: 100},
		},
	}
	_, err := env.svc.Publish(context.Background(), graph, platform.Credentials{}, false)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	// Budget conflict, missing adset name, missing creative, missing ad
	// name and missing token all reported at once.
	assert.GreaterOrEqual(t, len(verr.Fields), 4)
}

func TestPublishUnknownAccount(t *testing.T) {
	env := newTestEnv(t)

	graph := validGraph()
	graph.AccountID = "nope"
	_, err := env.svc.Publish(context.Background(), graph, testCreds(), false)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Empty(t, env.remote.calls())
}

func TestPublishAccountByExternalID(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)

	graph := validGraph()
	graph.AccountID = "act_100"
	result, err := env.svc.Publish(context.Background(), graph, testCreds(), false)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", result.Campaign.AccountID)
}

func TestPublishBidCapInjectsDefaultAmount(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)

	graph := validGraph()
	graph.AdSet.BidStrategy = models.BidStrategyBidCap
	graph.AdSet.BidAmount = nil

	result, err := env.svc.Publish(context.Background(), graph, testCreds(), false)
	require.NoError(t, err)
	require.NotNil(t, result.AdSet.BidAmount)
	assert.Equal(t, models.DefaultBidAmount, *result.AdSet.BidAmount)
}

func TestPublishLowestCostStripsBidAmount(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)

	amt := 5.5
	graph := validGraph()
	graph.AdSet.BidStrategy = models.BidStrategyLowestCost
	graph.AdSet.BidAmount = &amt

	result, err := env.svc.Publish(context.Background(), graph, testCreds(), false)
	require.NoError(t, err)
	assert.Nil(t, result.AdSet.BidAmount)
}

func TestPublishReusesProvidedDrafts(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t)
	ctx := context.Background()

	draft, err := env.svc.Drafts().EnsureCampaign(ctx, "", models.Campaign{
		AccountID: "acc-1",
		Name:      "staged",
		Objective: models.ObjectiveTraffic,
		Budget:    models.Budget{Daily: 10},
	})
	require.NoError(t, err)

	graph := validGraph()
	graph.CampaignDraftID = draft.ID

	result, err := env.svc.Publish(ctx, graph, testCreds(), false)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, result.Campaign.ID)
	// The staged draft's own fields win over the graph payload.
	assert.Equal(t, "staged", result.Campaign.Name)

	campaigns, err := env.store.Campaigns.ListByAccount(ctx, "acc-1", false)
	require.NoError(t, err)
	assert.Len(t, campaigns, 1)
}
