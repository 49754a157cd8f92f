package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brodheadw/oreacle-bot/internal/model"
	"github.com/brodheadw/oreacle-bot/internal/phrasebook"
)

// SystemPrompt frames the model as an extractive, quote-first reader
const SystemPrompt = `You are a compliance-grade, extractive information extractor for Chinese regulatory documents about mining licenses.
Rules:
- Output ONLY valid JSON that matches the provided schema.
- Be EXTRACTIVE: include exact Chinese quotes for every claim.
- Do NOT infer production resumption unless an explicit phrase appears.
- If the document is exploration-only or about another mine or entity, label it accordingly.
- Focus on the Jianxiawo (枧下窝) lithium mine in Yichun specifically.`

// SchemaName is the name the structured-output schema is registered under
const SchemaName = "Extraction"

// ExtractionSchema is the JSON schema of the extraction record. Every
// property is required so that providers enforcing strict schemas accept it;
// optional text fields are nullable instead.
var ExtractionSchema = json.RawMessage(`{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "doc_url": {"type": "string"},
    "doc_title": {"type": ["string", "null"]},
    "mine_match": {"type": "string", "enum": ["JIANXIAWO_MATCH", "POSSIBLE_MATCH", "NO_MATCH"]},
    "authority": {"type": ["string", "null"]},
    "key_terms_found_zh": {"type": "array", "items": {"type": "string"}},
    "key_terms_found_en": {"type": "array", "items": {"type": "string"}},
    "proposed_label": {"type": "string", "enum": ["YES_CONDITION", "NO_CONDITION", "AMBIGUOUS", "IRRELEVANT"]},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "evidence": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "exact_zh_quote": {"type": "string"},
          "en_literal": {"type": "string"},
          "where_in_doc": {"type": "string"}
        },
        "required": ["exact_zh_quote", "en_literal", "where_in_doc"]
      }
    },
    "hazards": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["doc_url", "doc_title", "mine_match", "authority", "key_terms_found_zh", "key_terms_found_en",
               "proposed_label", "confidence", "evidence", "hazards"]
}`)

// maxSourceRunes bounds the document text placed in the prompt
const maxSourceRunes = 12000

// BuildPrompt constructs the user prompt for one extraction call
func BuildPrompt(req ExtractRequest) string {
	pb := req.Phrasebook
	if pb == nil {
		pb = &phrasebook.Phrasebook{}
	}

	return fmt.Sprintf(`SCHEMA: %s

ALLOWED YES PHRASES (ZH): %s
ALLOWED YES PHRASES (EN): %s
ALLOWED NO PHRASES (ZH): %s
ALLOWED NO PHRASES (EN): %s
MINE CANONICAL NAMES: %s

DOC_URL: %s

TEXT (Chinese or mixed):

%s

Return JSON only.`,
		compactSchema(),
		termList(pb.YesZH), termList(pb.YesEN),
		termList(pb.NoZH), termList(pb.NoEN),
		termList(pb.MineAliases),
		req.SourceURL,
		truncateRunes(req.SourceText, maxSourceRunes))
}

// ParseResponse decodes model output into a validated extraction record.
// Markdown code fences and prose around the JSON object are tolerated;
// anything structurally invalid is a *model.ValidationError.
func ParseResponse(raw string) (*model.Extraction, error) {
	return model.ParseExtraction([]byte(jsonObject(raw)))
}

func jsonObject(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

func compactSchema() string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, ExtractionSchema); err != nil {
		return string(ExtractionSchema)
	}
	return buf.String()
}

func termList(terms []string) string {
	if len(terms) == 0 {
		return "[]"
	}
	data, err := json.Marshal(terms)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
