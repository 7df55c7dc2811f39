package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain json", `{"code":"finance"}`, `{"code":"finance"}`},
		{"json fence", "```json\n{\"code\":\"finance\"}\n```", `{"code":"finance"}`},
		{"bare fence", "```\n{\"code\":\"finance\"}\n```", `{"code":"finance"}`},
		{"fence with language", "```javascript\n{\"code\":\"finance\"}\n```", `{"code":"finance"}`},
		{"surrounding whitespace", "  {\"code\":\"finance\"}  ", `{"code":"finance"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}
