package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radiusdt/adbridge/internal/bridge"
	"github.com/radiusdt/adbridge/internal/config"
	"github.com/radiusdt/adbridge/internal/database"
	"github.com/radiusdt/adbridge/internal/metrics"
	"github.com/radiusdt/adbridge/internal/models"
	"github.com/radiusdt/adbridge/internal/platform"
	"github.com/radiusdt/adbridge/internal/storage"
)

// PlatformTokenHeader carries the ad platform access token on publish,
// update and sync requests. Distinct from the service API key.
const PlatformTokenHeader = "X-Platform-Token"

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	DB         *database.PostgresDB
	Redis      *database.RedisDB
	ClickHouse *database.ClickHouseDB
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// backendCheck is one named health probe against an optional backend.
type backendCheck struct {
	name  string
	check func(ctx context.Context) error
}

// Server wraps HTTP handlers around the bridge service.
type Server struct {
	svc      *bridge.Service
	store    *storage.Store
	logger   *zap.Logger
	config   *config.Config
	metrics  *metrics.Metrics
	backends []backendCheck
}

// NewServer constructs a new http.Handler with all routes registered. Any
// missing backend falls back to its in-memory counterpart so the service
// stays usable in development.
func NewServer(deps *Dependencies) http.Handler {
	var store *storage.Store
	if deps.DB != nil {
		store = storage.NewPostgresStore(deps.DB.Pool)
	} else {
		store = storage.NewMemoryStore()
	}

	var audit storage.AuditStore
	if deps.ClickHouse != nil {
		chStore, err := storage.NewClickHouseAuditStore(context.Background(), deps.ClickHouse.Conn)
		if err != nil {
			deps.Logger.Warn("clickhouse audit store unavailable, using in-memory", zap.Error(err))
			audit = storage.NewInMemoryAuditStore()
		} else {
			audit = chStore
		}
	} else {
		audit = storage.NewInMemoryAuditStore()
	}

	var throttle platform.Throttle
	if deps.Redis != nil {
		throttle = platform.NewRedisThrottle(deps.Redis.Client, "adbridge:throttle", int64(deps.Config.Sync.ThrottleRPS), deps.Logger)
	} else {
		throttle = platform.NewLocalThrottle(float64(deps.Config.Sync.ThrottleRPS), deps.Config.Sync.ThrottleRPS)
	}

	remote := platform.NewHTTPClient(platform.HTTPClientConfig{
		BaseURL:  deps.Config.Platform.BaseURL,
		Timeout:  deps.Config.Platform.Timeout,
		PageSize: deps.Config.Platform.PageSize,
		Throttle: throttle,
		Logger:   deps.Logger,
		Metrics:  deps.Metrics,
	})

	svc := bridge.NewService(bridge.ServiceConfig{
		Remote:      remote,
		Store:       store,
		Audit:       audit,
		Logger:      deps.Logger,
		Metrics:     deps.Metrics,
		Concurrency: deps.Config.Sync.Concurrency,
	})

	var backends []backendCheck
	if deps.DB != nil {
		backends = append(backends, backendCheck{name: "postgres", check: deps.DB.Health})
	}
	if deps.Redis != nil {
		backends = append(backends, backendCheck{name: "redis", check: deps.Redis.Health})
	}
	if deps.ClickHouse != nil {
		backends = append(backends, backendCheck{name: "clickhouse", check: deps.ClickHouse.Health})
	}

	s := &Server{
		svc:      svc,
		store:    store,
		logger:   deps.Logger,
		config:   deps.Config,
		metrics:  deps.Metrics,
		backends: backends,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)

	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Publish and reconciliation
	mux.HandleFunc("/publish", s.handlePublish)
	mux.HandleFunc("/update", s.handleUpdate)
	mux.HandleFunc("/sync/", s.handleSync)

	// Accounts
	mux.HandleFunc("/accounts", s.handleAccounts)

	// Local graph reads and deletes
	mux.HandleFunc("/campaigns", s.handleCampaigns)
	mux.HandleFunc("/campaigns/", s.handleCampaignByID)
	mux.HandleFunc("/adsets", s.handleAdSets)
	mux.HandleFunc("/ads", s.handleAds)

	return mux
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	body := map[string]any{}

	if len(s.backends) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		results := map[string]string{}
		for _, b := range s.backends {
			if err := b.check(ctx); err != nil {
				results[b.name] = err.Error()
				status = "degraded"
			} else {
				results[b.name] = "ok"
			}
		}
		body["backends"] = results
	}
	body["status"] = status

	w.Header().Set("Content-Type", "application/json")
	if status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(body)
}

// ---- Publish ----

type publishRequest struct {
	models.PublishGraph
	AccessToken string `json:"access_token,omitempty"`
	DryRun      bool   `json:"dry_run,omitempty"`
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}

	creds := s.credentials(r, req.AccessToken)
	result, err := s.svc.Publish(r.Context(), req.PublishGraph, creds, req.DryRun)
	if err != nil {
		s.bridgeError(w, err, "publish failed")
		return
	}

	s.jsonResponse(w, result)
}

// ---- Flexible Update ----

type updateRequest struct {
	models.UpdateForest
	AccessToken string `json:"access_token,omitempty"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}

	creds := s.credentials(r, req.AccessToken)
	report, err := s.svc.UpdateFlexible(r.Context(), req.UpdateForest, creds)
	if err != nil {
		s.bridgeError(w, err, "update failed")
		return
	}

	s.jsonResponse(w, report)
}

// ---- Pull Sync ----

type syncRequest struct {
	AccessToken string `json:"access_token,omitempty"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountExternalID := strings.TrimPrefix(r.URL.Path, "/sync/")
	if accountExternalID == "" {
		s.errorResponse(w, "account external id required", http.StatusBadRequest)
		return
	}

	var req syncRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	creds := s.credentials(r, req.AccessToken)
	report, err := s.svc.SyncAccount(r.Context(), accountExternalID, creds)
	if err != nil {
		s.bridgeError(w, err, "sync failed")
		return
	}

	s.jsonResponse(w, report)
}

// ---- Accounts ----

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.store.Accounts.ListAll(r.Context())
		if err != nil {
			s.logger.Error("failed to list accounts", zap.Error(err))
			s.errorResponse(w, "failed to list", http.StatusInternalServerError)
			return
		}
		s.jsonResponse(w, list)

	case http.MethodPost:
		var a models.Account
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			s.errorResponse(w, "invalid json", http.StatusBadRequest)
			return
		}
		if a.Name == "" {
			s.errorResponse(w, "name is required", http.StatusBadRequest)
			return
		}
		now := time.Now().UTC()
		if a.ID == "" {
			a.ID = uuid.NewString()
			a.CreatedAt = now
		}
		a.UpdatedAt = now
		if err := s.store.Accounts.Upsert(r.Context(), &a); err != nil {
			s.errorResponse(w, "failed to save: "+err.Error(), http.StatusBadRequest)
			return
		}
		s.jsonResponse(w, a)

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ---- Local Graph Reads ----

func (s *Server) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		s.errorResponse(w, "account_id required", http.StatusBadRequest)
		return
	}
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	list, err := s.store.Campaigns.ListByAccount(r.Context(), accountID, includeDeleted)
	if err != nil {
		s.logger.Error("failed to list campaigns", zap.Error(err))
		s.errorResponse(w, "failed to list", http.StatusInternalServerError)
		return
	}
	list = filterStatus(list, statusParam(r), func(c *models.Campaign) models.Status { return c.Status })
	s.jsonResponse(w, list)
}

func (s *Server) handleCampaignByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/campaigns/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := s.store.Campaigns.GetByID(r.Context(), id)
		if err != nil {
			s.logger.Error("failed to get campaign", zap.Error(err))
			s.errorResponse(w, "error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if c == nil {
			http.NotFound(w, r)
			return
		}
		s.jsonResponse(w, c)

	case http.MethodDelete:
		reason := r.URL.Query().Get("reason")
		if reason == "" {
			reason = "deleted via api"
		}
		if err := s.svc.SoftDeleteCampaign(r.Context(), id, reason); err != nil {
			s.logger.Error("failed to delete campaign", zap.Error(err))
			s.errorResponse(w, "failed to delete: "+err.Error(), http.StatusInternalServerError)
			return
		}
		s.jsonResponse(w, map[string]string{"status": "deleted", "id": id})

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAdSets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	campaignID := r.URL.Query().Get("campaign_id")
	if campaignID == "" {
		s.errorResponse(w, "campaign_id required", http.StatusBadRequest)
		return
	}
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	list, err := s.store.AdSets.ListByCampaign(r.Context(), campaignID, includeDeleted)
	if err != nil {
		s.logger.Error("failed to list adsets", zap.Error(err))
		s.errorResponse(w, "failed to list", http.StatusInternalServerError)
		return
	}
	list = filterStatus(list, statusParam(r), func(a *models.AdSet) models.Status { return a.Status })
	s.jsonResponse(w, list)
}

func (s *Server) handleAds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	adsetID := r.URL.Query().Get("adset_id")
	if adsetID == "" {
		s.errorResponse(w, "adset_id required", http.StatusBadRequest)
		return
	}
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	list, err := s.store.Ads.ListByAdSet(r.Context(), adsetID, includeDeleted)
	if err != nil {
		s.logger.Error("failed to list ads", zap.Error(err))
		s.errorResponse(w, "failed to list", http.StatusInternalServerError)
		return
	}
	list = filterStatus(list, statusParam(r), func(a *models.Ad) models.Status { return a.Status })
	s.jsonResponse(w, list)
}

// ---- Helper Methods ----

func statusParam(r *http.Request) models.Status {
	return models.Status(r.URL.Query().Get("status"))
}

// filterStatus narrows a listing to one status when the query asks for it.
func filterStatus[T any](list []*T, want models.Status, status func(*T) models.Status) []*T {
	if want == "" {
		return list
	}
	out := make([]*T, 0, len(list))
	for _, item := range list {
		if status(item) == want {
			out = append(out, item)
		}
	}
	return out
}

// credentials prefers the header token over the body one.
func (s *Server) credentials(r *http.Request, bodyToken string) platform.Credentials {
	token := r.Header.Get(PlatformTokenHeader)
	if token == "" {
		token = bodyToken
	}
	return platform.Credentials{AccessToken: token}
}

// bridgeError maps service errors onto HTTP status codes.
func (s *Server) bridgeError(w http.ResponseWriter, err error, fallback string) {
	var verr *bridge.ValidationError
	switch {
	case errors.As(err, &verr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, bridge.ErrAccountNotFound):
		s.errorResponse(w, err.Error(), http.StatusNotFound)
	case platform.IsAuthError(err):
		s.errorResponse(w, platform.UserMessage(err, "platform authorization failed"), http.StatusUnauthorized)
	default:
		s.logger.Error(fallback, zap.Error(err))
		s.errorResponse(w, platform.UserMessage(err, fallback), http.StatusBadGateway)
	}
}

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
