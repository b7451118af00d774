package model

import (
	"math/rand"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// RandomForestRegressor averages bootstrap-trained regression trees.
type RandomForestRegressor struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int
	Bootstrap       bool
	RandomState     int64
}

// Forest is a fitted RandomForestRegressor.
type Forest struct {
	Trees []*RegressionTree
}

// RandomForestOption functional config for RandomForestRegressor
type RandomForestOption func(*RandomForestRegressor)

func WithNEstimators(n int) RandomForestOption {
	return func(rf *RandomForestRegressor) { rf.NEstimators = n }
}
func WithBootstrap(b bool) RandomForestOption {
	return func(rf *RandomForestRegressor) { rf.Bootstrap = b }
}
func WithRandomState(seed int64) RandomForestOption {
	return func(rf *RandomForestRegressor) { rf.RandomState = seed }
}
func WithForestMaxDepth(d int) RandomForestOption {
	return func(rf *RandomForestRegressor) { rf.MaxDepth = d }
}
func WithForestMinSamplesLeaf(n int) RandomForestOption {
	return func(rf *RandomForestRegressor) { rf.MinSamplesLeaf = n }
}
func WithForestMaxFeatures(k int) RandomForestOption {
	return func(rf *RandomForestRegressor) { rf.MaxFeatures = k }
}

// DefaultTrees is the forest size used when none is given.
const DefaultTrees = 100

// NewRandomForestRegressor initializes the forest with DefaultTrees
// bootstrapped trees seeded from DefaultSeed.
func NewRandomForestRegressor(opts ...RandomForestOption) *RandomForestRegressor {
	rf := &RandomForestRegressor{
		NEstimators:     DefaultTrees,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
		RandomState:     DefaultSeed,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains the trees concurrently. Tree i draws its bootstrap sample and
// feature subsets from a source seeded with RandomState+i, so the fitted
// forest does not depend on scheduling.
func (rf *RandomForestRegressor) Fit(X [][]float64, y []float64) (Predictor, error) {
	p, err := checkTrainingSet(X, y)
	if err != nil {
		return nil, err
	}
	n := len(X)
	nTrees := max(rf.NEstimators, 1)
	forest := &Forest{Trees: make([]*RegressionTree, nTrees)}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < nTrees; i++ {
		g.Go(func() error {
			treeRand := rand.New(rand.NewSource(rf.RandomState + int64(i)))

			// Bootstrap sampling: an index slice, not a copy of the data.
			sampleIndices := make([]int, n)
			for j := range sampleIndices {
				if rf.Bootstrap {
					sampleIndices[j] = treeRand.Intn(n)
				} else {
					sampleIndices[j] = j
				}
			}

			tree := NewDecisionTreeRegressor(
				WithMaxDepth(rf.MaxDepth),
				WithMinSamplesSplit(rf.MinSamplesSplit),
				WithMinSamplesLeaf(rf.MinSamplesLeaf),
				WithMaxFeatures(rf.MaxFeatures),
			)
			forest.Trees[i] = tree.fitIndices(X, y, sampleIndices, p, treeRand)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return forest, nil
}

// Predict returns the mean of the trees' estimates.
func (f *Forest) Predict(X [][]float64) []float64 {
	perTree := make([][]float64, len(f.Trees))
	var wg sync.WaitGroup
	for t, tree := range f.Trees {
		wg.Add(1)
		go func() {
			defer wg.Done()
			perTree[t] = tree.Predict(X)
		}()
	}
	wg.Wait()

	out := make([]float64, len(X))
	for i := range out {
		sum := 0.0
		for t := range perTree {
			sum += perTree[t][i]
		}
		out[i] = sum / float64(len(perTree))
	}
	return out
}
