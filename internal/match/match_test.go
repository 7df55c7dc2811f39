package match

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencouncil/meeting-ingest/internal/types"
)

func testMeeting() *types.Meeting {
	return &types.Meeting{
		ExternalID: "cc-2025-001",
		Title:      "City Council Regular Meeting",
		KeyDecisions: []string{
			"Approved the downtown parking study",
			"Tabled the stormwater fee increase",
		},
		Assignments: []types.Assignment{
			{Code: "finance", Confidence: 0.8, Primary: true},
			{Code: "transportation", Confidence: 0.4},
		},
	}
}

func TestMeeting_CategoryIntersection(t *testing.T) {
	topic := types.InterestTopic{
		ID:            uuid.New(),
		Name:          "City finances",
		CategoryCodes: []string{"finance"},
	}

	events := Meeting(testMeeting(), []types.InterestTopic{topic})
	require.Len(t, events, 1)
	assert.Equal(t, topic.ID, events[0].TopicID)
	assert.Equal(t, "cc-2025-001", events[0].ExternalID)
	assert.Equal(t, "category finance", events[0].Reason)
}

func TestMeeting_KeywordInKeyDecisions(t *testing.T) {
	topic := types.InterestTopic{
		ID:       uuid.New(),
		Name:     "Stormwater watch",
		Keywords: []string{"Stormwater"},
	}

	events := Meeting(testMeeting(), []types.InterestTopic{topic})
	require.Len(t, events, 1)
	assert.Equal(t, `keyword "Stormwater"`, events[0].Reason)
}

func TestMeeting_KeywordInTitle(t *testing.T) {
	topic := types.InterestTopic{
		Name:     "Council watcher",
		Keywords: []string{"city council"},
	}

	events := Meeting(testMeeting(), []types.InterestTopic{topic})
	assert.Len(t, events, 1)
}

func TestMeeting_NoMatch(t *testing.T) {
	topic := types.InterestTopic{
		Name:          "Animal control",
		CategoryCodes: []string{"public_safety"},
		Keywords:      []string{"kennel"},
	}

	events := Meeting(testMeeting(), []types.InterestTopic{topic})
	assert.Empty(t, events)
}

func TestMeeting_OneEventPerTopic(t *testing.T) {
	// Both rules match; the topic still produces a single event.
	topic := types.InterestTopic{
		Name:          "Everything finance",
		CategoryCodes: []string{"finance"},
		Keywords:      []string{"parking"},
	}

	events := Meeting(testMeeting(), []types.InterestTopic{topic})
	require.Len(t, events, 1)
	assert.Equal(t, "category finance", events[0].Reason)
}

func TestMeetings_MultipleTopicsAndMeetings(t *testing.T) {
	meetings := []types.Meeting{*testMeeting(), {
		ExternalID:  "cc-2025-002",
		Title:       "Parks Committee Meeting",
		Assignments: []types.Assignment{{Code: "parks_recreation", Primary: true}},
	}}
	topics := []types.InterestTopic{
		{Name: "Finance", CategoryCodes: []string{"finance"}},
		{Name: "Parks", CategoryCodes: []string{"parks_recreation"}},
	}

	events := Meetings(meetings, topics)
	require.Len(t, events, 2)
	assert.Equal(t, "cc-2025-001", events[0].ExternalID)
	assert.Equal(t, "cc-2025-002", events[1].ExternalID)
}
