// Package loader partitions row indices for model evaluation.
package loader

import (
	"fmt"
	"math/rand"
)

// KFoldSplit shuffles 0..n-1 with rnd and deals the indices into k folds.
func KFoldSplit(n, k int, rnd *rand.Rand) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("loader: need at least 2 folds, got %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("loader: %d rows cannot fill %d folds", n, k)
	}
	indices := rnd.Perm(n)
	folds := make([][]int, k)
	for i := range n {
		folds[i%k] = append(folds[i%k], indices[i])
	}
	return folds, nil
}

// TrainIndices returns every index outside folds[test], in fold order.
func TrainIndices(folds [][]int, test int) []int {
	var out []int
	for f, fold := range folds {
		if f != test {
			out = append(out, fold...)
		}
	}
	return out
}
