package model

import (
	"math"
	"math/rand"
	"sort"
)

// ---------------------------
// Types & options
// ---------------------------

// DecisionTreeRegressor is a CART-style regression tree. Splits minimise
// the summed squared error of the children.
type DecisionTreeRegressor struct {
	MaxDepth            int     // maximum depth (root depth = 0). 0 => no limit
	MinSamplesSplit     int     // minimum samples to attempt a split
	MinSamplesLeaf      int     // minimum samples required in each leaf
	MaxFeatures         int     // 0 => all features, >0 => features sampled per node
	MinImpurityDecrease float64 // minimal squared error decrease to accept a split
	Seed                int64   // seed for feature subsampling
}

// RegressionTree is a fitted DecisionTreeRegressor.
type RegressionTree struct {
	root *dtNode
}

// dtNode holds a node in the tree.
type dtNode struct {
	isLeaf    bool
	feature   int
	threshold float64 // numeric: x <= threshold => left
	isCat     bool    // equality split: x == threshold => left
	nanLeft   bool    // side taken by missing values
	left      *dtNode
	right     *dtNode

	n     int
	value float64 // leaf estimate: mean target of the samples reaching it
}

// Option functional config
type Option func(*DecisionTreeRegressor)

func WithMaxDepth(d int) Option { return func(t *DecisionTreeRegressor) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeRegressor) { t.MinSamplesSplit = n }
}
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeRegressor) { t.MinSamplesLeaf = n }
}
func WithMaxFeatures(k int) Option { return func(t *DecisionTreeRegressor) { t.MaxFeatures = k } }
func WithMinImpurityDecrease(v float64) Option {
	return func(t *DecisionTreeRegressor) { t.MinImpurityDecrease = v }
}
func WithSeed(seed int64) Option { return func(t *DecisionTreeRegressor) { t.Seed = seed } }

// NewDecisionTreeRegressor returns a regressor with sensible defaults.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	d := &DecisionTreeRegressor{
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     0,
		Seed:            DefaultSeed,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ---------------------------
// Public API
// ---------------------------

// Fit trains a tree on X (n x p) and y (n). Missing values must be
// math.NaN(). Categorical features must be integer codes.
func (t *DecisionTreeRegressor) Fit(X [][]float64, y []float64) (Predictor, error) {
	p, err := checkTrainingSet(X, y)
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	return t.fitIndices(X, y, idx, p, rand.New(rand.NewSource(t.Seed))), nil
}

// fitIndices grows a tree over the samples named by idx, which may
// repeat (bootstrap samples).
func (t *DecisionTreeRegressor) fitIndices(X [][]float64, y []float64, idx []int, p int, rnd *rand.Rand) *RegressionTree {
	return &RegressionTree{root: t.buildNode(X, y, idx, 0, p, rnd)}
}

// Predict returns one estimate per row of X.
func (rt *RegressionTree) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		out[i] = rt.predictSingle(X[i])
	}
	return out
}

// Depth returns the depth of the deepest leaf.
func (rt *RegressionTree) Depth() int { return nodeDepth(rt.root) }

func nodeDepth(n *dtNode) int {
	if n == nil || n.isLeaf {
		return 0
	}
	return 1 + max(nodeDepth(n.left), nodeDepth(n.right))
}

// ---------------------------
// Internal builders & helpers
// ---------------------------

// splitResult is the best split found for one feature.
type splitResult struct {
	gain      float64
	feature   int
	threshold float64
	isCat     bool
	nanLeft   bool
}

// pair is a feature value and its sample index.
type pair struct {
	v float64
	i int
}

// moments accumulates count, sum and sum of squares of targets.
type moments struct {
	n       int
	sum, sq float64
}

func (m *moments) add(v float64) { m.n++; m.sum += v; m.sq += v * v }

func (m moments) plus(o moments) moments {
	return moments{n: m.n + o.n, sum: m.sum + o.sum, sq: m.sq + o.sq}
}

func (m moments) minus(o moments) moments {
	return moments{n: m.n - o.n, sum: m.sum - o.sum, sq: m.sq - o.sq}
}

// sse is the summed squared deviation from the mean.
func (m moments) sse() float64 {
	if m.n == 0 {
		return 0
	}
	v := m.sq - m.sum*m.sum/float64(m.n)
	if v < 0 {
		return 0
	}
	return v
}

func (t *DecisionTreeRegressor) buildNode(X [][]float64, y []float64, idx []int, depth, p int, rnd *rand.Rand) *dtNode {
	var total moments
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, ii := range idx {
		total.add(y[ii])
		lo = math.Min(lo, y[ii])
		hi = math.Max(hi, y[ii])
	}
	node := &dtNode{n: len(idx), value: total.sum / float64(total.n), isLeaf: true}

	if lo == hi || (t.MinSamplesSplit > 0 && len(idx) < t.MinSamplesSplit) {
		return node
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return node
	}

	// determine features to try
	featIndices := make([]int, p)
	for j := 0; j < p; j++ {
		featIndices[j] = j
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < p {
		for i := 0; i < t.MaxFeatures; i++ {
			j := i + rnd.Intn(p-i)
			featIndices[i], featIndices[j] = featIndices[j], featIndices[i]
		}
		featIndices = featIndices[:t.MaxFeatures]
		sort.Ints(featIndices)
	}

	parent := total.sse()
	best := splitResult{feature: -1}
	for _, f := range featIndices {
		r := t.findBestSplitForFeature(X, y, idx, f, parent)
		if r.feature >= 0 && r.gain > best.gain {
			best = r
		}
	}

	if best.feature == -1 || best.gain <= t.MinImpurityDecrease {
		return node
	}

	leftIdx := make([]int, 0, len(idx))
	rightIdx := make([]int, 0, len(idx))
	for _, ii := range idx {
		if goesLeft(X[ii][best.feature], best.threshold, best.isCat, best.nanLeft) {
			leftIdx = append(leftIdx, ii)
		} else {
			rightIdx = append(rightIdx, ii)
		}
	}

	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		return node
	}

	node.isLeaf = false
	node.feature = best.feature
	node.threshold = best.threshold
	node.isCat = best.isCat
	node.nanLeft = best.nanLeft
	node.left = t.buildNode(X, y, leftIdx, depth+1, p, rnd)
	node.right = t.buildNode(X, y, rightIdx, depth+1, p, rnd)
	return node
}

// findBestSplitForFeature scans equality splits on integer-like features
// and threshold splits on every feature, trying missing values on both
// sides of each candidate.
func (t *DecisionTreeRegressor) findBestSplitForFeature(X [][]float64, y []float64, idx []int, f int, parent float64) splitResult {
	result := splitResult{feature: -1}

	var nan moments
	valid := make([]pair, 0, len(idx))
	for _, ii := range idx {
		v := X[ii][f]
		if math.IsNaN(v) {
			nan.add(y[ii])
		} else {
			valid = append(valid, pair{v, ii})
		}
	}
	if len(valid) == 0 {
		return result
	}

	consider := func(left, right moments, thr float64, isCat bool) {
		for _, nanLeft := range []bool{true, false} {
			l, r := left, right
			if nan.n > 0 {
				if nanLeft {
					l = l.plus(nan)
				} else {
					r = r.plus(nan)
				}
			} else if !nanLeft {
				continue
			}
			if l.n < max(t.MinSamplesLeaf, 1) || r.n < max(t.MinSamplesLeaf, 1) {
				continue
			}
			gain := parent - l.sse() - r.sse()
			if gain > result.gain {
				result = splitResult{gain: gain, feature: f, threshold: thr, isCat: isCat, nanLeft: nanLeft}
			}
		}
	}

	sort.Slice(valid, func(a, b int) bool {
		if valid[a].v == valid[b].v {
			return valid[a].i < valid[b].i
		}
		return valid[a].v < valid[b].v
	})
	var all moments
	for _, pv := range valid {
		all.add(y[pv.i])
	}

	// ---- categorical equality splits on small integer-like domains ----
	if groups := equalityGroups(valid, y); groups != nil {
		for _, g := range groups {
			consider(g.m, all.minus(g.m), g.v, true)
		}
	}

	// ---- numeric splits: scan thresholds between distinct values ----
	var left moments
	for s := 1; s <= len(valid); s++ {
		left.add(y[valid[s-1].i])
		if s < len(valid) && valid[s].v == valid[s-1].v {
			continue
		}
		if s == len(valid) {
			// every present value left, missing values alone on the right
			if nan.n > 0 {
				thr := valid[s-1].v
				l, r := left, nan
				if l.n >= max(t.MinSamplesLeaf, 1) && r.n >= max(t.MinSamplesLeaf, 1) {
					if gain := parent - l.sse() - r.sse(); gain > result.gain {
						result = splitResult{gain: gain, feature: f, threshold: thr, nanLeft: false}
					}
				}
			}
			break
		}
		thr := (valid[s-1].v + valid[s].v) / 2.0
		if thr >= valid[s].v {
			thr = valid[s-1].v
		}
		consider(left, all.minus(left), thr, false)
	}
	return result
}

type valueGroup struct {
	v float64
	m moments
}

// equalityGroups groups sorted values when the feature looks like a small
// set of integer codes; it returns nil otherwise.
func equalityGroups(sorted []pair, y []float64) []valueGroup {
	var groups []valueGroup
	for _, pv := range sorted {
		if !almostInt(pv.v) {
			return nil
		}
		if len(groups) == 0 || groups[len(groups)-1].v != pv.v {
			if len(groups) == 30 {
				return nil
			}
			groups = append(groups, valueGroup{v: pv.v})
		}
		groups[len(groups)-1].m.add(y[pv.i])
	}
	if len(groups) < 3 {
		// two groups are covered by the threshold scan
		return nil
	}
	return groups
}

func almostInt(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	_, frac := math.Modf(math.Abs(v))
	return frac < 1e-9 || frac > 1-1e-9
}

func goesLeft(v, thr float64, isCat, nanLeft bool) bool {
	if math.IsNaN(v) {
		return nanLeft
	}
	if isCat {
		return v == thr
	}
	return v <= thr
}

// ---------------------------
// Prediction helper
// ---------------------------

func (rt *RegressionTree) predictSingle(x []float64) float64 {
	node := rt.root
	for !node.isLeaf {
		if goesLeft(x[node.feature], node.threshold, node.isCat, node.nanLeft) {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}
