package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/domain"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/evalcache"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/extractor"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/logger"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/pipeline"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/settings"
)

const maxImportBytes = 1 << 20

// RuleStore owns the live rule set.
type RuleStore interface {
	Current() domain.RuleSet
	Version() string
	Update(ctx context.Context, rules domain.RuleSet) domain.RuleSet
	Export() ([]byte, error)
	Import(ctx context.Context, payload []byte) error
	HideItem(ctx context.Context, id string) bool
	ResetHidden(ctx context.Context) int
	SetMaxPrice(ctx context.Context, v float64) float64
}

// PassReporter exposes the outcome of the most recent pass.
type PassReporter interface {
	LastResult() (pipeline.PassResult, bool)
	LastDecisions() []pipeline.ItemDecision
	CacheStats() evalcache.Stats
}

// Trigger requests a new pass.
type Trigger interface {
	Fire()
}

// Handler serves the /api/v1 routes.
type Handler struct {
	store   RuleStore
	rules   pipeline.RulesFunc
	passes  PassReporter
	trigger Trigger
}

// NewHandler wires the handler. passes and trigger may be nil when no
// pipeline runs in this process.
func NewHandler(store RuleStore, rules pipeline.RulesFunc, passes PassReporter, trigger Trigger) *Handler {
	return &Handler{store: store, rules: rules, passes: passes, trigger: trigger}
}

// RegisterRoutes mounts the API. When secret is set, mutating routes
// require a bearer token.
func (h *Handler) RegisterRoutes(router *gin.Engine, secret string) {
	v1 := router.Group("/api/v1")
	v1.GET("/rules", h.getRules)
	v1.GET("/rules/export", h.exportRules)
	v1.GET("/decisions", h.listDecisions)
	v1.GET("/stats", h.stats)
	v1.POST("/evaluate", h.evaluate)

	mutating := v1.Group("")
	if secret != "" {
		mutating.Use(JWTMiddleware(secret))
	}
	mutating.PUT("/rules", h.putRules)
	mutating.POST("/rules/import", h.importRules)
	mutating.PUT("/rules/max-price", h.setMaxPrice)
	mutating.POST("/items/:id/hide", h.hideItem)
	mutating.DELETE("/items/hidden", h.resetHidden)
	mutating.POST("/passes", h.triggerPass)
}

type rulesResponse struct {
	Version string         `json:"version"`
	Rules   domain.RuleSet `json:"rules"`
}

func (h *Handler) rulesResponse() rulesResponse {
	return rulesResponse{Version: h.store.Version(), Rules: h.store.Current()}
}

func (h *Handler) getRules(c *gin.Context) {
	c.JSON(http.StatusOK, h.rulesResponse())
}

func (h *Handler) putRules(c *gin.Context) {
	var rules domain.RuleSet
	if err := c.ShouldBindJSON(&rules); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule set: " + err.Error()})
		return
	}
	h.store.Update(c.Request.Context(), rules)
	c.JSON(http.StatusOK, h.rulesResponse())
}

func (h *Handler) exportRules(c *gin.Context) {
	payload, err := h.store.Export()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="deal-filter-settings.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (h *Handler) importRules(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	if err = h.store.Import(c.Request.Context(), payload); err != nil {
		if errors.Is(err, settings.ErrInvalidImport) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
		return
	}
	c.JSON(http.StatusOK, h.rulesResponse())
}

type maxPriceRequest struct {
	// MaxPrice is a JSON number or a localized string such as "1.299,00".
	MaxPrice json.RawMessage `json:"maxPrice" binding:"required"`
}

func (h *Handler) setMaxPrice(c *gin.Context) {
	var req maxPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "maxPrice is required"})
		return
	}
	v, ok := parsePrice(req.MaxPrice)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "maxPrice must be a number"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"maxPrice": h.store.SetMaxPrice(c.Request.Context(), v)})
}

func parsePrice(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	if p := extractor.ParseNumber(s); p != nil {
		return *p, true
	}
	return 0, false
}

func (h *Handler) hideItem(c *gin.Context) {
	id := c.Param("id")
	added := h.store.HideItem(c.Request.Context(), id)
	logger.FromContext(c.Request.Context()).Info("Item hidden manually",
		logger.String("item_id", id),
		logger.Bool("added", added),
	)
	c.JSON(http.StatusOK, gin.H{"id": id, "added": added})
}

func (h *Handler) resetHidden(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cleared": h.store.ResetHidden(c.Request.Context())})
}

func (h *Handler) listDecisions(c *gin.Context) {
	if h.passes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no pipeline running"})
		return
	}
	result, ok := h.passes.LastResult()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pass has completed yet"})
		return
	}

	decisions := h.passes.LastDecisions()
	if raw := c.Query("hidden"); raw != "" {
		want, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hidden must be a boolean"})
			return
		}
		filtered := decisions[:0]
		for _, d := range decisions {
			if d.Decision.Hide == want {
				filtered = append(filtered, d)
			}
		}
		decisions = filtered
	}

	result.Decisions = decisions
	c.JSON(http.StatusOK, result)
}

type evaluateResponse struct {
	SettingsVersion string          `json:"settingsVersion"`
	DisplayTitle    string          `json:"displayTitle"`
	Decision        domain.Decision `json:"decision"`
}

func (h *Handler) evaluate(c *gin.Context) {
	var item domain.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item: " + err.Error()})
		return
	}

	snap := h.rules()
	item.DisplayTitle = snap.DisplayTitle(item.RawTitle, item.SourceName)
	c.JSON(http.StatusOK, evaluateResponse{
		SettingsVersion: snap.SettingsVersion(),
		DisplayTitle:    item.DisplayTitle,
		Decision:        snap.Evaluate(item),
	})
}

func (h *Handler) triggerPass(c *gin.Context) {
	if h.trigger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no pipeline running"})
		return
	}
	h.trigger.Fire()
	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled"})
}

type statsResponse struct {
	Cache    evalcache.Stats      `json:"cache"`
	LastPass *pipeline.PassResult `json:"lastPass,omitempty"`
	Version  string               `json:"settingsVersion"`
}

func (h *Handler) stats(c *gin.Context) {
	resp := statsResponse{Version: h.store.Version()}
	if h.passes != nil {
		resp.Cache = h.passes.CacheStats()
		if last, ok := h.passes.LastResult(); ok {
			last.Decisions = nil
			resp.LastPass = &last
		}
	}
	c.JSON(http.StatusOK, resp)
}
