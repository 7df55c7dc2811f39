package categorize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/opencouncil/meeting-ingest/internal/llm"
	"github.com/opencouncil/meeting-ingest/internal/prompts"
	"github.com/opencouncil/meeting-ingest/internal/schemas"
	"github.com/opencouncil/meeting-ingest/internal/types"
)

// UnavailableError reports that the external categorization call failed,
// timed out, or returned an unusable response. It never escapes the engine:
// the keyword result (or the uncategorized default) is used instead.
type UnavailableError struct {
	Message string
	Cause   error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("categorization unavailable: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("categorization unavailable: %s", e.Message)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// Options configures the categorization engine.
type Options struct {
	// MinScore is the keyword score below which a category is discarded.
	MinScore float64
	// AlsoRelevant is the keyword score above which a non-primary category
	// is still assigned as secondary.
	AlsoRelevant float64
	// NearTieDelta is the top-two score gap below which the keyword pass is
	// considered ambiguous and the external model is consulted.
	NearTieDelta float64
	// ModelTimeout bounds each external categorization call.
	ModelTimeout time.Duration
}

// DefaultOptions returns the thresholds used in production.
func DefaultOptions() Options {
	return Options{
		MinScore:     0.2,
		AlsoRelevant: 0.6,
		NearTieDelta: 0.1,
		ModelTimeout: 20 * time.Second,
	}
}

// Engine categorizes meetings and agenda items against a fixed taxonomy.
// A nil llm.Client disables the model pass entirely; the engine then runs
// on keyword scoring alone.
type Engine struct {
	client   llm.Client
	taxonomy []types.Category
	opts     Options
}

// NewEngine creates an engine over the given taxonomy. Pass a nil client to
// run keyword-only.
func NewEngine(client llm.Client, taxonomy []types.Category, opts Options) *Engine {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	return &Engine{client: client, taxonomy: taxonomy, opts: opts}
}

// Meeting assigns categories to a whole meeting based on its title, key
// decisions, and agenda item text. It never returns an error or an empty
// slice; when nothing matches it returns the uncategorized default.
func (e *Engine) Meeting(ctx context.Context, draft *types.MeetingDraft, items []types.AgendaItem) []types.Assignment {
	var sb strings.Builder
	sb.WriteString(draft.Title)
	sb.WriteString("\n")
	for _, d := range draft.KeyDecisions {
		sb.WriteString(d)
		sb.WriteString("\n")
	}
	for _, item := range items {
		sb.WriteString(item.Title)
		sb.WriteString("\n")
		sb.WriteString(item.Description)
		sb.WriteString("\n")
	}
	return e.assign(ctx, draft.Title, sb.String(), "categorize-meeting", llm.TierStandard)
}

// Item assigns a single category to one agenda item.
func (e *Engine) Item(ctx context.Context, item *types.AgendaItem) *types.Assignment {
	text := item.Title + "\n" + item.Description
	assignments := e.assign(ctx, item.Title, text, "categorize-item", llm.TierLite)
	primary := assignments[0]
	return &primary
}

// assign runs the hybrid pipeline: keyword scoring, then the external model
// when the keyword pass is empty or near-tied, then threshold-based
// secondary assignment. The returned slice always has at least one element
// and exactly one primary.
func (e *Engine) assign(ctx context.Context, title, text, promptKey string, tier llm.ModelTier) []types.Assignment {
	scores := scoreKeywords(text, e.taxonomy)

	kept := scores[:0:0]
	for _, s := range scores {
		if s.Score >= e.opts.MinScore {
			kept = append(kept, s)
		}
	}

	var primary *types.Assignment
	if e.needsModel(kept) && e.client != nil {
		if a, err := e.consultModel(ctx, title, text, promptKey, tier); err == nil {
			primary = a
		}
	}

	var out []types.Assignment
	if primary != nil && primary.Code != CodeUncategorized {
		primary.Primary = true
		out = append(out, *primary)
	} else if len(kept) > 0 {
		out = append(out, types.Assignment{
			Code:       kept[0].Code,
			Confidence: confidenceFor(kept[0].Score),
			Primary:    true,
		})
	}

	if len(out) == 0 {
		return []types.Assignment{{Code: CodeUncategorized, Confidence: 0, Primary: true}}
	}

	for _, s := range kept {
		if s.Code == out[0].Code || s.Score < e.opts.AlsoRelevant {
			continue
		}
		out = append(out, types.Assignment{Code: s.Code, Confidence: confidenceFor(s.Score)})
	}
	return out
}

// needsModel reports whether the keyword pass is inconclusive: no category
// cleared the threshold, or the top two are too close to call.
func (e *Engine) needsModel(kept []keywordScore) bool {
	if len(kept) == 0 {
		return true
	}
	if len(kept) >= 2 && kept[0].Score-kept[1].Score < e.opts.NearTieDelta {
		return true
	}
	return false
}

// modelResponse mirrors the categorization response schema.
type modelResponse struct {
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
}

// consultModel makes one time-bounded external categorization call. The
// response is schema-validated and the code checked against the taxonomy;
// anything else is treated as unavailable, never trusted verbatim.
func (e *Engine) consultModel(ctx context.Context, title, text, promptKey string, tier llm.ModelTier) (*types.Assignment, error) {
	template, err := prompts.Get("categorization.json", promptKey)
	if err != nil {
		return nil, &UnavailableError{Message: "loading prompt", Cause: err}
	}
	prompt := prompts.Format(template, map[string]string{
		"Taxonomy": taxonomyPromptList(e.taxonomy),
		"Title":    title,
		"Text":     text,
	})

	callCtx, cancel := context.WithTimeout(ctx, e.opts.ModelTimeout)
	defer cancel()

	raw, err := e.client.GenerateJSON(callCtx, prompt, tier)
	if err != nil {
		return nil, &UnavailableError{Message: "model call failed", Cause: err}
	}

	if err := schemas.ValidateJSONString(schemas.CategorizationResponse(), raw); err != nil {
		return nil, &UnavailableError{Message: "response failed schema validation", Cause: err}
	}

	var resp modelResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, &UnavailableError{Message: "parsing response", Cause: err}
	}

	if !ValidCode(e.taxonomy, resp.Code) {
		return nil, &UnavailableError{Message: fmt.Sprintf("code %q is not in the taxonomy", resp.Code)}
	}

	return &types.Assignment{Code: resp.Code, Confidence: resp.Confidence}, nil
}
