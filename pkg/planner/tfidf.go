package planner

import (
	"math"
	"sort"
)

// Document is one candidate context item (a node label, action name, or
// verification name) the TF-IDF filter ranks against the instruction.
type Document struct {
	ID    string
	Terms []string
}

// tfidfRank scores each document by cosine similarity between its TF-IDF
// vector and the query's, using the document set itself as the corpus for
// IDF — there is no off-the-shelf corpus library in the pack's dependency
// surface for this; see DESIGN.md for why this stays hand-rolled stdlib
// rather than a third-party NLP package.
func tfidfRank(query []string, docs []Document) []string {
	if len(docs) == 0 {
		return nil
	}

	df := make(map[string]int)
	for _, d := range docs {
		seen := make(map[string]bool)
		for _, t := range d.Terms {
			if !seen[t] {
				df[t]++
				seen[t] = true
			}
		}
	}
	n := float64(len(docs))

	idf := func(term string) float64 {
		count := df[term]
		if count == 0 {
			return 0
		}
		return math.Log(n/float64(count)) + 1
	}

	vectorize := func(terms []string) map[string]float64 {
		tf := make(map[string]float64)
		for _, t := range terms {
			tf[t]++
		}
		vec := make(map[string]float64, len(tf))
		for term, count := range tf {
			vec[term] = count * idf(term)
		}
		return vec
	}

	queryVec := vectorize(query)

	type scored struct {
		id    string
		score float64
	}
	results := make([]scored, 0, len(docs))
	for _, d := range docs {
		docVec := vectorize(d.Terms)
		results = append(results, scored{id: d.ID, score: cosine(queryVec, docVec)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].id < results[j].id // deterministic tie-break
	})

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.id
	}
	return ids
}

func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for term, va := range a {
		normA += va * va
		if vb, ok := b[term]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopN returns the first n IDs of ranked, or all of them if there are fewer.
func TopN(ranked []string, n int) []string {
	if n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
