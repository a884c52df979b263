package bridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiusdt/adbridge/internal/models"
)

func TestResolveRefPrefersLocalID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	byID := &models.Campaign{ID: "c1", AccountID: "acc-1", Name: "by id"}
	byExt := &models.Campaign{ID: "c2", AccountID: "acc-1", Name: "by ext", ExternalID: "ext-9"}
	require.NoError(t, env.store.Campaigns.Upsert(ctx, byID))
	require.NoError(t, env.store.Campaigns.Upsert(ctx, byExt))

	got, err := resolveRef(ctx, NodeRef{ID: "c1", ExternalID: "ext-9"},
		env.store.Campaigns.GetByID, env.store.Campaigns.GetByExternalID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "c1", got.ID)
}

func TestResolveRefFallsBackToDraftThenExternal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft := &models.Campaign{ID: "d1", AccountID: "acc-1", Name: "draft"}
	ext := &models.Campaign{ID: "c9", AccountID: "acc-1", Name: "published", ExternalID: "ext-1"}
	require.NoError(t, env.store.Campaigns.Upsert(ctx, draft))
	require.NoError(t, env.store.Campaigns.Upsert(ctx, ext))

	got, err := resolveRef(ctx, NodeRef{ID: "missing", DraftID: "d1"},
		env.store.Campaigns.GetByID, env.store.Campaigns.GetByExternalID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "d1", got.ID)

	got, err = resolveRef(ctx, NodeRef{ID: "missing", DraftID: "also-missing", ExternalID: "ext-1"},
		env.store.Campaigns.GetByID, env.store.Campaigns.GetByExternalID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "c9", got.ID)
}

func TestResolveRefNoMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	got, err := resolveRef(ctx, NodeRef{ID: "x", DraftID: "y", ExternalID: "z"},
		env.store.Campaigns.GetByID, env.store.Campaigns.GetByExternalID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = resolveRef(ctx, NodeRef{},
		env.store.Campaigns.GetByID, env.store.Campaigns.GetByExternalID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEnsureCampaignIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	drafts := env.svc.Drafts()

	first, err := drafts.EnsureCampaign(ctx, "", models.Campaign{
		AccountID: "acc-1",
		Name:      "one",
		Objective: models.ObjectiveTraffic,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, first.Status)
	assert.Empty(t, first.ExternalID)

	// Same id again: the existing record wins, the new template is ignored.
	second, err := drafts.EnsureCampaign(ctx, first.ID, models.Campaign{
		AccountID: "acc-1",
		Name:      "two",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "one", second.Name)

	all, err := env.store.Campaigns.ListByAccount(ctx, "acc-1", false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEnsureAdDraftStripsExternalState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ad, err := env.svc.Drafts().EnsureAd(ctx, "", models.Ad{
		AdSetID:    "as-1",
		CreativeID: "cr-1",
		Name:       "fresh",
		ExternalID: "should-be-dropped",
		Status:     models.StatusActive,
	})
	require.NoError(t, err)
	assert.Empty(t, ad.ExternalID)
	assert.Equal(t, models.StatusDraft, ad.Status)
	assert.NotEmpty(t, ad.ID)
}
