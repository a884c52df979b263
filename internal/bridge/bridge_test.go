package bridge

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radiusdt/adbridge/internal/models"
	"github.com/radiusdt/adbridge/internal/platform"
	"github.com/radiusdt/adbridge/internal/storage"
)

// fakeClient is an in-memory platform.Client recording every call. Failures
// are injected per create kind, per update external id and per delete
// external id.
type fakeClient struct {
	mu   sync.Mutex
	seq  int
	log  []string // "create:campaign", "update:<ext>", "delete:<ext>"
	dels []string // delete external ids in call order

	failCreate  map[string]error // kind -> error
	failUpdate  map[string]error // external id -> error
	failDelete  map[string]error // external id -> error
	panicCreate map[string]bool  // kind -> panic instead of returning

	updates map[string][]map[string]any // external id -> field maps

	campaignPages [][]platform.RemoteCampaign
	adsetPages    [][]platform.RemoteAdSet
	adPages       [][]platform.RemoteAd
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		failCreate:  map[string]error{},
		failUpdate:  map[string]error{},
		failDelete:  map[string]error{},
		panicCreate: map[string]bool{},
		updates:     map[string][]map[string]any{},
	}
}

func (f *fakeClient) create(kind string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, "create:"+kind)
	if f.panicCreate[kind] {
		panic("remote client blew up creating " + kind)
	}
	if err := f.failCreate[kind]; err != nil {
		return "", err
	}
	f.seq++
	return fmt.Sprintf("ext-%s-%d", kind, f.seq), nil
}

func (f *fakeClient) CreateCampaign(ctx context.Context, creds platform.Credentials, accountExternalID string, p platform.CampaignPayload) (string, error) {
	return f.create("campaign")
}

func (f *fakeClient) CreateAdSet(ctx context.Context, creds platform.Credentials, accountExternalID string, p platform.AdSetPayload) (string, error) {
	return f.create("adset")
}

func (f *fakeClient) CreateCreative(ctx context.Context, creds platform.Credentials, accountExternalID string, p platform.CreativePayload) (string, error) {
	return f.create("creative")
}

func (f *fakeClient) CreateAd(ctx context.Context, creds platform.Credentials, accountExternalID string, p platform.AdPayload) (string, error) {
	return f.create("ad")
}

func (f *fakeClient) UpdateEntity(ctx context.Context, creds platform.Credentials, externalID string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, "update:"+externalID)
	if err := f.failUpdate[externalID]; err != nil {
		return err
	}
	f.updates[externalID] = append(f.updates[externalID], fields)
	return nil
}

func (f *fakeClient) DeleteEntity(ctx context.Context, creds platform.Credentials, externalID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, "delete:"+externalID)
	if err := f.failDelete[externalID]; err != nil {
		return false, err
	}
	f.dels = append(f.dels, externalID)
	return true, nil
}

func pageOf[T any](pages [][]T, cursor string) ([]T, string, error) {
	idx := 0
	if cursor != "" {
		var err error
		idx, err = strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("bad cursor %q", cursor)
		}
	}
	if idx >= len(pages) {
		return nil, "", nil
	}
	next := ""
	if idx+1 < len(pages) {
		next = strconv.Itoa(idx + 1)
	}
	return pages[idx], next, nil
}

func (f *fakeClient) ListCampaigns(ctx context.Context, creds platform.Credentials, accountExternalID, cursor string) ([]platform.RemoteCampaign, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, "list:campaigns")
	return pageOf(f.campaignPages, cursor)
}

func (f *fakeClient) ListAdSets(ctx context.Context, creds platform.Credentials, accountExternalID, cursor string) ([]platform.RemoteAdSet, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, "list:adsets")
	return pageOf(f.adsetPages, cursor)
}

func (f *fakeClient) ListAds(ctx context.Context, creds platform.Credentials, accountExternalID, cursor string) ([]platform.RemoteAd, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, "list:ads")
	return pageOf(f.adPages, cursor)
}

func (f *fakeClient) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make([]string, len(f.log))
	copy(res, f.log)
	return res
}

func (f *fakeClient) deletes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make([]string, len(f.dels))
	copy(res, f.dels)
	return res
}

func (f *fakeClient) updatesFor(externalID string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates[externalID]
}

type testEnv struct {
	svc    *Service
	store  *storage.Store
	audit  *storage.InMemoryAuditStore
	remote *fakeClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	remote := newFakeClient()
	store := storage.NewMemoryStore()
	audit := storage.NewInMemoryAuditStore()
	svc := NewService(ServiceConfig{
		Remote:      remote,
		Store:       store,
		Audit:       audit,
		Logger:      zap.NewNop(),
		Concurrency: 2,
	})
	return &testEnv{svc: svc, store: store, audit: audit, remote: remote}
}

func (e *testEnv) seedAccount(t *testing.T) *models.Account {
	t.Helper()
	acc := &models.Account{ID: "acc-1", ExternalID: "act_100", Name: "Test Account"}
	require.NoError(t, e.store.Accounts.Upsert(context.Background(), acc))
	return acc
}

func testCreds() platform.Credentials {
	return platform.Credentials{AccessToken: "token-1"}
}

func validGraph() models.PublishGraph {
	return models.PublishGraph{
		AccountID: "acc-1",
		Campaign: models.Campaign{
			Name:      "Spring Launch",
			Objective: models.ObjectiveConversions,
			Budget:    models.Budget{Daily: 25},
		},
		AdSet: models.AdSet{
			Name:        "US broad",
			BidStrategy: models.BidStrategyLowestCost,
			Budget:      models.Budget{Daily: 25},
		},
		Creative: models.CreativeContent{
			Title:    "Buy now",
			Body:     "Great product",
			ImageURL: "https://cdn.example/img.png",
			LinkURL:  "https://example.com",
		},
		Ad: models.Ad{Name: "Spring ad"},
	}
}

func (e *testEnv) auditTypes() []models.AuditEventType {
	var types []models.AuditEventType
	for _, ev := range e.audit.Events() {
		types = append(types, ev.Type)
	}
	return types
}
