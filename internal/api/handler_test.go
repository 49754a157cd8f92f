package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brodheadw/oreacle-bot/internal/model"
	"github.com/brodheadw/oreacle-bot/internal/pipeline"
)

const resumptionRecord = `{
  "doc_url": "https://example.cn/a",
  "doc_title": "关于枧下窝矿区恢复生产的公告",
  "mine_match": "JIANXIAWO_MATCH",
  "authority": null,
  "key_terms_found_zh": ["恢复生产"],
  "key_terms_found_en": ["resume production"],
  "proposed_label": "YES_CONDITION",
  "confidence": 0.9,
  "evidence": [{"exact_zh_quote": "枧下窝矿区于近日恢复生产", "en_literal": "The Jianxiawo mining area recently resumed production", "where_in_doc": "para 2"}],
  "hazards": []
}`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := model.DefaultConfig()
	cfg.Target = model.TargetConfig{MarketID: "mkt-1"}
	p := pipeline.New(cfg, pipeline.Options{Logger: logger})

	return NewRouter(NewHandler(p, cfg, logger), gin.TestMode)
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	}
	return w, decoded
}

func TestHealth(t *testing.T) {
	w, body := do(t, newTestRouter(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestPrefilter(t *testing.T) {
	r := newTestRouter(t)

	w, body := do(t, r, http.MethodPost, "/api/prefilter", `{"text": "宁德时代宜春枧下窝矿区恢复生产"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["passes"])
	assert.Equal(t, true, body["boolean"])

	w, body = do(t, r, http.MethodPost, "/api/prefilter", `{"text": "jianxiawo lithium mining update"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["fuzzy"])

	w, body = do(t, r, http.MethodPost, "/api/prefilter", `{"text": "股东大会决议公告"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["passes"])

	w, _ = do(t, r, http.MethodPost, "/api/prefilter", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerdict_Affirmative(t *testing.T) {
	w, body := do(t, newTestRouter(t), http.MethodPost, "/api/verdict", resumptionRecord)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "YES_CONDITION", body["verdict"])
	assert.Empty(t, body["failed_affirmative"])

	action := body["action"].(map[string]interface{})
	assert.Equal(t, "comment", action["kind"])
	assert.Equal(t, "mkt-1", action["market_id"])
}

func TestVerdict_ValidationError(t *testing.T) {
	r := newTestRouter(t)

	w, body := do(t, r, http.MethodPost, "/api/verdict", `{"doc_url": "u", "mine_match": "MAYBE"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "mine_match", body["field"])
	assert.NotEmpty(t, body["error"])

	w, body = do(t, r, http.MethodPost, "/api/verdict", `not json`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "(document)", body["field"])
}

func TestEvaluate(t *testing.T) {
	r := newTestRouter(t)

	w, body := do(t, r, http.MethodPost, "/api/items/evaluate", `{"source": "szse", "id": "9", "title": "股东大会决议公告"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "filtered", body["stage"])

	w, body = do(t, r, http.MethodPost, "/api/items/evaluate", `{"title": "no identity"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "source", body["field"])
}

func TestLadderCheck(t *testing.T) {
	r := newTestRouter(t)
	markets := `[
		{"id": "m1", "question": "Will CATL restart Jianxiawo by March 31, 2025?", "probability": 0.80},
		{"id": "m2", "question": "Will CATL restart Jianxiawo by June 30, 2025?", "probability": 0.70}
	]`

	w, body := do(t, r, http.MethodPost, "/api/ladder/check", `{"markets": `+markets+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["violations_found"])
	assert.EqualValues(t, 1, body["comments_planned"])
	assert.EqualValues(t, 0.05, body["tolerance"])

	w, body = do(t, r, http.MethodPost, "/api/ladder/check", `{"markets": `+markets+`, "tolerance": 0.2}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["violations_found"])

	w, body = do(t, r, http.MethodPost, "/api/ladder/check", `{"markets": [], "tolerance": 1.5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "tolerance", body["field"])
}
