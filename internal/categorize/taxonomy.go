// Package categorize assigns taxonomy categories to meetings and agenda
// items. A keyword scoring pass runs first; an external model call is used
// only to disambiguate, and every failure mode falls back to the keyword
// result so categorization never fails the ingestion pipeline.
package categorize

import (
	"fmt"
	"strings"

	"github.com/opencouncil/meeting-ingest/internal/types"
)

// CodeUncategorized is the fallback category assigned when no taxonomy
// category clears the minimum score and the external call cannot decide.
const CodeUncategorized = "uncategorized"

// DefaultTaxonomy returns the built-in category taxonomy. Codes are stable
// and referenced by interest-topic subscriptions, so they must not change
// between releases.
func DefaultTaxonomy() []types.Category {
	return []types.Category{
		{
			Code: "finance",
			Name: "Finance & Budget",
			Keywords: []string{
				"budget", "fiscal", "appropriation", "appropriations", "tax",
				"levy", "audit", "revenue", "expenditure", "bond", "grant",
			},
		},
		{
			Code: "governance",
			Name: "Governance & Administration",
			Keywords: []string{
				"ordinance", "resolution", "charter", "election", "appointment",
				"proclamation", "bylaws", "policy",
			},
		},
		{
			Code: "housing",
			Name: "Housing & Development",
			Keywords: []string{
				"housing", "affordable", "development", "subdivision",
				"annexation", "permit", "construction",
			},
		},
		{
			Code: "land_use",
			Name: "Land Use & Zoning",
			Keywords: []string{
				"zoning", "rezoning", "variance", "easement", "plat",
				"land use", "setback", "conditional use",
			},
		},
		{
			Code: "parks_recreation",
			Name: "Parks & Recreation",
			Keywords: []string{
				"park", "parks", "recreation", "trail", "playground",
				"library", "community center",
			},
		},
		{
			Code: "public_safety",
			Name: "Public Safety",
			Keywords: []string{
				"police", "fire", "emergency", "ambulance", "dispatch",
				"enforcement", "safety",
			},
		},
		{
			Code: "transportation",
			Name: "Transportation & Streets",
			Keywords: []string{
				"street", "road", "traffic", "transit", "sidewalk", "parking",
				"intersection", "paving",
			},
		},
		{
			Code: "utilities",
			Name: "Utilities & Infrastructure",
			Keywords: []string{
				"water", "sewer", "stormwater", "utility", "utilities",
				"broadband", "wastewater", "drainage",
			},
		},
	}
}

// ValidCode reports whether code names a category in the taxonomy. The
// uncategorized fallback is always valid.
func ValidCode(taxonomy []types.Category, code string) bool {
	if code == CodeUncategorized {
		return true
	}
	for _, c := range taxonomy {
		if c.Code == code {
			return true
		}
	}
	return false
}

// taxonomyPromptList renders the taxonomy as "code: name" lines for
// inclusion in a categorization prompt.
func taxonomyPromptList(taxonomy []types.Category) string {
	var sb strings.Builder
	for _, c := range taxonomy {
		sb.WriteString(fmt.Sprintf("%s: %s\n", c.Code, c.Name))
	}
	sb.WriteString(fmt.Sprintf("%s: no listed category applies\n", CodeUncategorized))
	return sb.String()
}
