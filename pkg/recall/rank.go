package recall

import (
	"sort"

	"github.com/soundprediction/graphrecall/pkg/types"
)

// sortScored orders results by score descending, record ID ascending on
// ties, so equal-score results always come back in the same order.
func sortScored(scored []types.ScoredRecord) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Record.ID < scored[j].Record.ID
	})
}

// dedupeMax collapses records sharing an ID to a single entry holding the
// maximum score. Relative order of survivors follows the ordering contract.
func dedupeMax(scored []types.ScoredRecord) []types.ScoredRecord {
	best := make(map[string]types.ScoredRecord, len(scored))
	for _, s := range scored {
		if have, ok := best[s.Record.ID]; !ok || s.Score > have.Score {
			best[s.Record.ID] = s
		}
	}
	out := make([]types.ScoredRecord, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	sortScored(out)
	return out
}

// toResults assigns 1-based ranks and truncates to topK. A non-positive
// topK keeps everything.
func toResults(scored []types.ScoredRecord, topK int) []types.RecallResult {
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	results := make([]types.RecallResult, len(scored))
	for i, s := range scored {
		results[i] = types.RecallResult{
			Record: s.Record,
			Score:  s.Score,
			Rank:   i + 1,
		}
	}
	return results
}
