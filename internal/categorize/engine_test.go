package categorize

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencouncil/meeting-ingest/internal/llm"
	"github.com/opencouncil/meeting-ingest/internal/types"
)

// fakeLLM implements llm.Client for engine tests.
type fakeLLM struct {
	response string
	err      error
	delay    time.Duration
	calls    int
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.response, f.err
}

func (f *fakeLLM) Close() error { return nil }

func draftWithText(title string, decisions ...string) *types.MeetingDraft {
	return &types.MeetingDraft{
		ExternalID:   "mtg-001",
		Title:        title,
		KeyDecisions: decisions,
	}
}

func TestEngine_KeywordOnly_BudgetMapsToFinance(t *testing.T) {
	engine := NewEngine(nil, nil, DefaultOptions())

	items := []types.AgendaItem{
		{Ordinal: 2, Title: "Budget approval", Description: "Approval of the annual budget and tax levy"},
	}
	assignments := engine.Meeting(context.Background(), draftWithText("City Council Regular Meeting"), items)

	require.NotEmpty(t, assignments)
	assert.Equal(t, "finance", assignments[0].Code)
	assert.True(t, assignments[0].Primary)
	assert.Greater(t, assignments[0].Confidence, 0.0)
}

func TestEngine_NoMatches_ReturnsUncategorized(t *testing.T) {
	engine := NewEngine(nil, nil, DefaultOptions())

	assignments := engine.Meeting(context.Background(), draftWithText("Untitled gathering", "nothing relevant here"), nil)

	require.Len(t, assignments, 1)
	assert.Equal(t, CodeUncategorized, assignments[0].Code)
	assert.True(t, assignments[0].Primary)
	assert.Equal(t, 0.0, assignments[0].Confidence)
}

func TestEngine_TieBreak_Deterministic(t *testing.T) {
	taxonomy := []types.Category{
		{Code: "zeta", Keywords: []string{"shared"}},
		{Code: "alpha", Keywords: []string{"shared"}},
	}
	engine := NewEngine(nil, taxonomy, DefaultOptions())

	for i := 0; i < 10; i++ {
		assignments := engine.Meeting(context.Background(), draftWithText("shared topic discussion"), nil)
		require.NotEmpty(t, assignments)
		assert.Equal(t, "alpha", assignments[0].Code)
	}
}

func TestEngine_ModelTimeout_FallsBackToKeywordResult(t *testing.T) {
	client := &fakeLLM{response: `{"code":"zeta","confidence":0.9}`, delay: time.Second}
	taxonomy := []types.Category{
		{Code: "zeta", Keywords: []string{"shared"}},
		{Code: "alpha", Keywords: []string{"shared"}},
	}
	opts := DefaultOptions()
	opts.ModelTimeout = 10 * time.Millisecond
	engine := NewEngine(client, taxonomy, opts)

	// The exact tie forces a model call; the timeout must fall back to the
	// deterministic keyword winner, never surface an error.
	assignments := engine.Meeting(context.Background(), draftWithText("shared topic discussion"), nil)

	require.NotEmpty(t, assignments)
	assert.Equal(t, "alpha", assignments[0].Code)
	assert.Equal(t, 1, client.calls)
}

func TestEngine_ModelError_FallsBackToUncategorized(t *testing.T) {
	client := &fakeLLM{err: errors.New("quota exceeded")}
	engine := NewEngine(client, nil, DefaultOptions())

	assignments := engine.Meeting(context.Background(), draftWithText("nothing matches the taxonomy"), nil)

	require.Len(t, assignments, 1)
	assert.Equal(t, CodeUncategorized, assignments[0].Code)
	assert.Equal(t, 1, client.calls)
}

func TestEngine_ModelDisambiguatesNearTie(t *testing.T) {
	client := &fakeLLM{response: `{"code":"zeta","confidence":0.85}`}
	taxonomy := []types.Category{
		{Code: "zeta", Keywords: []string{"shared"}},
		{Code: "alpha", Keywords: []string{"shared"}},
	}
	engine := NewEngine(client, taxonomy, DefaultOptions())

	assignments := engine.Meeting(context.Background(), draftWithText("shared topic discussion"), nil)

	require.NotEmpty(t, assignments)
	assert.Equal(t, "zeta", assignments[0].Code)
	assert.True(t, assignments[0].Primary)
	assert.InDelta(t, 0.85, assignments[0].Confidence, 1e-9)
}

func TestEngine_ModelCodeOutsideTaxonomy_Rejected(t *testing.T) {
	client := &fakeLLM{response: `{"code":"made_up_code","confidence":0.99}`}
	taxonomy := []types.Category{
		{Code: "zeta", Keywords: []string{"shared"}},
		{Code: "alpha", Keywords: []string{"shared"}},
	}
	engine := NewEngine(client, taxonomy, DefaultOptions())

	assignments := engine.Meeting(context.Background(), draftWithText("shared topic discussion"), nil)

	require.NotEmpty(t, assignments)
	assert.Equal(t, "alpha", assignments[0].Code)
}

func TestEngine_ModelMalformedResponse_Rejected(t *testing.T) {
	client := &fakeLLM{response: `{"category":"finance"}`}
	engine := NewEngine(client, nil, DefaultOptions())

	assignments := engine.Meeting(context.Background(), draftWithText("nothing matches the taxonomy"), nil)

	require.Len(t, assignments, 1)
	assert.Equal(t, CodeUncategorized, assignments[0].Code)
}

func TestEngine_SecondaryAssignments(t *testing.T) {
	engine := NewEngine(nil, nil, DefaultOptions())

	items := []types.AgendaItem{
		{Ordinal: 1, Title: "Budget and tax levy", Description: "budget budget tax levy audit"},
		{Ordinal: 2, Title: "Rezoning request", Description: "rezoning zoning variance zoning"},
	}
	assignments := engine.Meeting(context.Background(), draftWithText("Council Meeting"), items)

	require.GreaterOrEqual(t, len(assignments), 2)

	primaries := 0
	codes := make(map[string]bool)
	for _, a := range assignments {
		if a.Primary {
			primaries++
		}
		codes[a.Code] = true
	}
	assert.Equal(t, 1, primaries)
	assert.True(t, codes["finance"])
	assert.True(t, codes["land_use"])
}

func TestEngine_Item_SingleAssignment(t *testing.T) {
	engine := NewEngine(nil, nil, DefaultOptions())

	item := &types.AgendaItem{Ordinal: 1, Title: "Water main replacement", Description: "sewer and water utility work"}
	assignment := engine.Item(context.Background(), item)

	require.NotNil(t, assignment)
	assert.Equal(t, "utilities", assignment.Code)
	assert.True(t, assignment.Primary)
}

func TestEngine_Deterministic_AcrossRuns(t *testing.T) {
	engine := NewEngine(nil, nil, DefaultOptions())
	items := []types.AgendaItem{
		{Ordinal: 1, Title: "Budget approval", Description: "annual budget and audit"},
		{Ordinal: 2, Title: "Park trail extension", Description: "new trail through the park"},
	}

	first := engine.Meeting(context.Background(), draftWithText("Regular Meeting"), items)
	second := engine.Meeting(context.Background(), draftWithText("Regular Meeting"), items)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
