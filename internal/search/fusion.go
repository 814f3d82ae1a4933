package search

import "sort"

// DefaultRRFConstant is the standard RRF smoothing parameter.
const DefaultRRFConstant = 60

// resumeRanks reduces a chunk list to per-resume ranks: a resume's rank
// is the best (lowest) rank of any of its chunks in the list.
func resumeRanks(list []RankedChunk) map[string]int {
	ranks := make(map[string]int)
	for _, c := range list {
		if best, ok := ranks[c.ResumeID]; !ok || c.Rank < best {
			ranks[c.ResumeID] = c.Rank
		}
	}
	return ranks
}

// RRFScores fuses retrieval lists with reciprocal rank fusion:
//
//	rrf(resume) = Σ over lists : 1 / (k + rank)
//
// A resume missing from a list contributes zero for that list.
func RRFScores(k int, lists ...[]RankedChunk) map[string]float64 {
	scores := make(map[string]float64)
	for _, list := range lists {
		for id, rank := range resumeRanks(list) {
			scores[id] += 1.0 / float64(k+rank)
		}
	}
	return scores
}

// maxEvidenceChars bounds a single evidence snippet.
const maxEvidenceChars = 800

// BuildEvidence unions the dense and sparse lists and selects, per
// resume, the top perResume chunks by score, de-duplicated by
// (sectionType, sectionOrdinal). Chunks present in both lists are marked
// WhyBoth.
func BuildEvidence(dense, sparse []RankedChunk, perResume int) map[string][]Evidence {
	type key struct {
		section string
		ordinal int
	}
	type entry struct {
		ev       Evidence
		inDense  bool
		inSparse bool
	}

	byResume := make(map[string]map[key]*entry)

	collect := func(list []RankedChunk, isDense bool) {
		for _, c := range list {
			k := key{section: c.SectionType, ordinal: c.SectionOrdinal}
			sections, ok := byResume[c.ResumeID]
			if !ok {
				sections = make(map[key]*entry)
				byResume[c.ResumeID] = sections
			}
			e, ok := sections[k]
			if !ok {
				text := c.Text
				if len(text) > maxEvidenceChars {
					text = text[:maxEvidenceChars]
				}
				e = &entry{ev: Evidence{
					ChunkText:      text,
					SectionType:    c.SectionType,
					SectionOrdinal: c.SectionOrdinal,
					Score:          c.Score,
				}}
				sections[k] = e
			}
			if c.Score > e.ev.Score {
				e.ev.Score = c.Score
			}
			if isDense {
				e.inDense = true
			} else {
				e.inSparse = true
			}
		}
	}
	collect(dense, true)
	collect(sparse, false)

	out := make(map[string][]Evidence, len(byResume))
	for resumeID, sections := range byResume {
		items := make([]Evidence, 0, len(sections))
		for _, e := range sections {
			switch {
			case e.inDense && e.inSparse:
				e.ev.WhyMatched = WhyBoth
			case e.inDense:
				e.ev.WhyMatched = WhyDense
			default:
				e.ev.WhyMatched = WhySparse
			}
			items = append(items, e.ev)
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].Score != items[j].Score {
				return items[i].Score > items[j].Score
			}
			if items[i].SectionType != items[j].SectionType {
				return items[i].SectionType < items[j].SectionType
			}
			return items[i].SectionOrdinal < items[j].SectionOrdinal
		})
		if perResume > 0 && len(items) > perResume {
			items = items[:perResume]
		}
		out[resumeID] = items
	}
	return out
}
