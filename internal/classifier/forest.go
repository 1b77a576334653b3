package classifier

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// treeNode is a single CART node. Leaves carry a normalized class
// distribution and have no children; internal nodes route on
// feature <= threshold. Fields are exported for gob.
type treeNode struct {
	Feature   int
	Threshold float64
	Left      *treeNode
	Right     *treeNode
	Probs     []float64
}

// forest is a bagged ensemble of CART trees. Prediction averages the leaf
// distributions of all trees, so the output is itself a normalized
// probability vector.
type forest struct {
	Trees      []*treeNode
	NumClasses int
}

const (
	numTrees       = 100
	maxDepth       = 10
	minSamplesLeaf = 1
	// 2 of 4 features per split, the usual sqrt(d) heuristic.
	featuresPerSplit = 2
)

// fitForest grows the ensemble. All randomness (bootstrap sampling, feature
// subsets) is drawn from rng sequentially, so a fixed seed reproduces the
// exact same forest.
func fitForest(features [][]float64, labels []int, numClasses int, rng *rand.Rand) *forest {
	f := &forest{
		Trees:      make([]*treeNode, 0, numTrees),
		NumClasses: numClasses,
	}

	for t := 0; t < numTrees; t++ {
		sample := make([]int, len(features))
		for i := range sample {
			sample[i] = rng.Intn(len(features))
		}
		f.Trees = append(f.Trees, growTree(features, labels, sample, numClasses, 0, rng))
	}

	return f
}

func growTree(features [][]float64, labels []int, indices []int, numClasses, depth int, rng *rand.Rand) *treeNode {
	counts := classCounts(labels, indices, numClasses)

	if depth >= maxDepth || len(indices) <= 2*minSamplesLeaf || isPure(counts) {
		return leaf(counts)
	}

	feature, threshold, ok := bestSplit(features, labels, indices, counts, numClasses, rng)
	if !ok {
		return leaf(counts)
	}

	var left, right []int
	for _, i := range indices {
		if features[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < minSamplesLeaf || len(right) < minSamplesLeaf {
		return leaf(counts)
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growTree(features, labels, left, numClasses, depth+1, rng),
		Right:     growTree(features, labels, right, numClasses, depth+1, rng),
	}
}

// bestSplit evaluates candidate thresholds on a random feature subset and
// returns the split with the lowest weighted gini impurity. ok is false when
// no candidate improves on the parent node.
func bestSplit(features [][]float64, labels []int, indices []int, parentCounts []float64, numClasses int, rng *rand.Rand) (int, float64, bool) {
	parentGini := gini(parentCounts)

	bestGini := parentGini
	bestFeature := -1
	bestThreshold := 0.0

	for _, feature := range rng.Perm(len(features[0]))[:featuresPerSplit] {
		values := make([]float64, 0, len(indices))
		for _, i := range indices {
			values = append(values, features[i][feature])
		}

		for _, threshold := range candidateThresholds(values) {
			leftCounts := make([]float64, numClasses)
			rightCounts := make([]float64, numClasses)
			for _, i := range indices {
				if features[i][feature] <= threshold {
					leftCounts[labels[i]]++
				} else {
					rightCounts[labels[i]]++
				}
			}

			nLeft := floats.Sum(leftCounts)
			nRight := floats.Sum(rightCounts)
			if nLeft == 0 || nRight == 0 {
				continue
			}

			n := nLeft + nRight
			weighted := (nLeft/n)*gini(leftCounts) + (nRight/n)*gini(rightCounts)
			if weighted < bestGini {
				bestGini = weighted
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

// candidateThresholds returns midpoints between consecutive distinct sorted
// values.
func candidateThresholds(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var thresholds []float64
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			thresholds = append(thresholds, (sorted[i]+sorted[i-1])/2)
		}
	}
	return thresholds
}

func classCounts(labels []int, indices []int, numClasses int) []float64 {
	counts := make([]float64, numClasses)
	for _, i := range indices {
		counts[labels[i]]++
	}
	return counts
}

func isPure(counts []float64) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func gini(counts []float64) float64 {
	total := floats.Sum(counts)
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := c / total
		impurity -= p * p
	}
	return impurity
}

func leaf(counts []float64) *treeNode {
	probs := append([]float64(nil), counts...)
	floats.Scale(1/floats.Sum(probs), probs)
	return &treeNode{Probs: probs}
}

// predictProba averages the leaf distributions of every tree for x.
func (f *forest) predictProba(x []float64) []float64 {
	probs := make([]float64, f.NumClasses)
	for _, tree := range f.Trees {
		node := tree
		for node.Left != nil {
			if x[node.Feature] <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		floats.Add(probs, node.Probs)
	}
	floats.Scale(1/float64(len(f.Trees)), probs)
	return probs
}
