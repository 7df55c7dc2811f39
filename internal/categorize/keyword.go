package categorize

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/opencouncil/meeting-ingest/internal/types"
)

// keywordScore is one category's score from the keyword pass, expressed as
// keyword hits per hundred words of input text.
type keywordScore struct {
	Code  string
	Score float64
}

// keyword regexes are compiled once per keyword and reused across meetings
var (
	keywordRe   = make(map[string]*regexp.Regexp)
	keywordReMu sync.RWMutex
)

func keywordPattern(keyword string) *regexp.Regexp {
	keywordReMu.RLock()
	re, ok := keywordRe[keyword]
	keywordReMu.RUnlock()
	if ok {
		return re
	}

	re = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)

	keywordReMu.Lock()
	keywordRe[keyword] = re
	keywordReMu.Unlock()
	return re
}

// scoreKeywords scores every taxonomy category against the text. Matching is
// case-insensitive on word boundaries, and scores are normalized by word
// count so long minutes documents do not outscore short agendas on volume
// alone. Results are sorted by score descending, then by code ascending so
// exact ties resolve the same way on every run.
func scoreKeywords(text string, taxonomy []types.Category) []keywordScore {
	words := len(strings.Fields(text))
	if words == 0 {
		return nil
	}

	scores := make([]keywordScore, 0, len(taxonomy))
	for _, cat := range taxonomy {
		hits := 0
		for _, kw := range cat.Keywords {
			hits += len(keywordPattern(kw).FindAllStringIndex(text, -1))
		}
		if hits == 0 {
			continue
		}
		scores = append(scores, keywordScore{
			Code:  cat.Code,
			Score: float64(hits) * 100 / float64(words),
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Code < scores[j].Code
	})
	return scores
}

// confidenceFor maps a keyword score onto [0,1). The mapping is monotonic
// and saturating: more hits per word always means higher confidence, but a
// keyword match alone never reaches full confidence.
func confidenceFor(score float64) float64 {
	return score / (score + 1)
}
