package analysis

import (
	"errors"
	"math"
)

var errEmptyVocabulary = errors.New("empty vocabulary")

// termVector is an L2-normalized sparse TF-IDF vector.
type termVector map[string]float64

// fitTFIDF weights every document against the vocabulary of all of them:
// raw term counts times smoothed idf ln((1+n)/(1+df))+1, then L2 normalization.
func fitTFIDF(docs []string) ([]termVector, error) {
	counts := make([]map[string]int, len(docs))
	df := map[string]int{}
	for i, doc := range docs {
		counts[i] = map[string]int{}
		for _, term := range termTokens(doc) {
			if counts[i][term] == 0 {
				df[term]++
			}
			counts[i][term]++
		}
	}
	if len(df) == 0 {
		return nil, errEmptyVocabulary
	}

	n := float64(len(docs))
	vectors := make([]termVector, len(docs))
	for i, tf := range counts {
		vec := termVector{}
		var norm float64
		for term, c := range tf {
			idf := math.Log((1+n)/(1+float64(df[term]))) + 1
			w := float64(c) * idf
			vec[term] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for term := range vec {
				vec[term] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// cosine returns the cosine similarity of two vectors; zero vectors score 0.
func cosine(a, b termVector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot, na, nb float64
	for term, w := range a {
		dot += w * b[term]
		na += w * w
	}
	for _, w := range b {
		nb += w * w
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp(dot/(math.Sqrt(na)*math.Sqrt(nb)), 0, 1)
}

// TopicSimilarity fits TF-IDF over exactly the two documents and returns their cosine similarity.
func TopicSimilarity(content, summary string) (float64, error) {
	vectors, err := fitTFIDF([]string{content, summary})
	if err != nil {
		return 0, err
	}
	return cosine(vectors[0], vectors[1]), nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
