// Package api exposes the decision and ladder operations over HTTP
package api

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/brodheadw/oreacle-bot/internal/ladder"
	"github.com/brodheadw/oreacle-bot/internal/model"
	"github.com/brodheadw/oreacle-bot/internal/pipeline"
)

// Handler serves the pipeline's pure operations. It never posts comments;
// suggested actions are returned to the caller.
type Handler struct {
	pipeline *pipeline.Pipeline
	cfg      *model.Config
	logger   *logrus.Logger
}

// NewHandler creates a Handler
func NewHandler(p *pipeline.Pipeline, cfg *model.Config, logger *logrus.Logger) *Handler {
	return &Handler{pipeline: p, cfg: cfg, logger: logger}
}

type prefilterRequest struct {
	Text string `json:"text"`
}

type prefilterResponse struct {
	Passes  bool `json:"passes"`
	Boolean bool `json:"boolean"`
	Fuzzy   bool `json:"fuzzy"`
}

type verdictResponse struct {
	Verdict           model.Verdict `json:"verdict"`
	FailedAffirmative []string      `json:"failed_affirmative"`
	FailedNegative    []string      `json:"failed_negative"`
	Action            model.Action  `json:"action"`
}

type ladderRequest struct {
	Markets   []model.Market `json:"markets"`
	Tolerance *float64       `json:"tolerance,omitempty"`
}

// Health reports liveness
// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Prefilter runs the relevance check on free text
// POST /api/prefilter {"text": "..."}
func (h *Handler) Prefilter(c *gin.Context) {
	var req prefilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := h.pipeline.Prefilter(req.Text)
	c.JSON(http.StatusOK, prefilterResponse{Passes: r.Passed, Boolean: r.Boolean, Fuzzy: r.Fuzzy})
}

// Verdict gates an extraction record
// POST /api/verdict <Extraction JSON>
func (h *Handler) Verdict(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	x, err := model.ParseExtraction(body)
	if err != nil {
		h.validationFailed(c, err)
		return
	}

	d, action, err := h.pipeline.Decide(x)
	if err != nil {
		h.validationFailed(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"doc_url": x.DocURL,
		"verdict": d.Verdict,
	}).Info("Verdict decided")

	c.JSON(http.StatusOK, verdictResponse{
		Verdict:           d.Verdict,
		FailedAffirmative: nonNil(d.FailedAffirmative),
		FailedNegative:    nonNil(d.FailedNegative),
		Action:            action,
	})
}

// Evaluate runs one raw item through the full pipeline
// POST /api/items/evaluate <RawItem JSON>
func (h *Handler) Evaluate(c *gin.Context) {
	var item model.RawItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.pipeline.Evaluate(c.Request.Context(), item)
	if err != nil {
		h.validationFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// LadderCheck runs one monotonicity cycle over the posted markets
// POST /api/ladder/check {"markets": [...], "tolerance": 0.05}
func (h *Handler) LadderCheck(c *gin.Context) {
	var req ladderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Tolerance == nil {
		c.JSON(http.StatusOK, h.pipeline.CheckLadder(req.Markets))
		return
	}

	tol := *req.Tolerance
	if math.IsNaN(tol) || tol < 0 || tol >= 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tolerance must be within [0,1)", "field": "tolerance"})
		return
	}

	reporter := ladder.Reporter{IncludeFooter: h.cfg.Output.IncludeFooter}
	c.JSON(http.StatusOK, pipeline.CheckMarkets(ladder.NewChecker(tol), reporter, req.Markets))
}

func (h *Handler) validationFailed(c *gin.Context, err error) {
	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		h.logger.WithError(err).WithField("field", vErr.Field).Warn("Rejected invalid input")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": vErr.Error(), "field": vErr.Field})
		return
	}

	h.logger.WithError(err).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
