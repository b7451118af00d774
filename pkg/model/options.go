package model

import (
	"fmt"
	"strings"
)

// Kind names a regressor implementation.
type Kind string

const (
	KindForest Kind = "forest"
	KindTree   Kind = "tree"
	KindLinear Kind = "linear"
	KindKNN    Kind = "knn"
)

// Kinds lists the supported regressor kinds.
var Kinds = []Kind{KindForest, KindTree, KindLinear, KindKNN}

// Params carries the hyperparameters understood by New. Zero values pick
// each regressor's defaults.
type Params struct {
	Seed           int64
	Trees          int
	MaxDepth       int
	MinSamplesLeaf int
	MaxFeatures    int
	Neighbors      int
	Ridge          float64
}

// New builds the regressor named by kind.
func New(kind Kind, p Params) (Regressor, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case KindForest, "":
		opts := []RandomForestOption{WithRandomState(p.Seed)}
		if p.Trees > 0 {
			opts = append(opts, WithNEstimators(p.Trees))
		}
		if p.MaxDepth > 0 {
			opts = append(opts, WithForestMaxDepth(p.MaxDepth))
		}
		if p.MinSamplesLeaf > 0 {
			opts = append(opts, WithForestMinSamplesLeaf(p.MinSamplesLeaf))
		}
		if p.MaxFeatures > 0 {
			opts = append(opts, WithForestMaxFeatures(p.MaxFeatures))
		}
		return NewRandomForestRegressor(opts...), nil
	case KindTree:
		opts := []Option{WithSeed(p.Seed)}
		if p.MaxDepth > 0 {
			opts = append(opts, WithMaxDepth(p.MaxDepth))
		}
		if p.MinSamplesLeaf > 0 {
			opts = append(opts, WithMinSamplesLeaf(p.MinSamplesLeaf))
		}
		if p.MaxFeatures > 0 {
			opts = append(opts, WithMaxFeatures(p.MaxFeatures))
		}
		return NewDecisionTreeRegressor(opts...), nil
	case KindLinear:
		return NewLinearRegression(p.Ridge), nil
	case KindKNN:
		k := p.Neighbors
		if k <= 0 {
			k = 5
		}
		return NewKNN(k), nil
	}
	return nil, fmt.Errorf("model: unknown regressor kind %q", kind)
}
