package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/Ryuk2git/econprep/pkg/data"
	"github.com/Ryuk2git/econprep/pkg/logging"
	"github.com/Ryuk2git/econprep/pkg/model"
	"github.com/Ryuk2git/econprep/pkg/pipeline"
)

var regions = []string{"north", "south", "east", "west"}

// generateHouses creates a priced housing dataset.
// Rule: price = 1000 * size * regionFactor + noise.
func generateHouses(n int, rnd *rand.Rand) (*data.Dataset, []float64) {
	factor := map[string]float64{"north": 1.2, "south": 0.9, "east": 1.0, "west": 1.5}
	d, _ := data.New("Region", "Size", "Age", "Price")
	truth := make([]float64, n)
	for i := 0; i < n; i++ {
		region := regions[rnd.Intn(len(regions))]
		size := 40 + rnd.Float64()*120
		age := float64(rnd.Intn(60))
		price := 1000*size*factor[region] - 500*age + rnd.NormFloat64()*5000
		truth[i] = price
		_ = d.AppendRow(data.Cat(region), data.Num(size), data.Num(age), data.Num(price))
	}
	return d, truth
}

// corrupt blanks some prices and inflates others by two orders of magnitude.
func corrupt(d *data.Dataset, missing, outliers float64, rnd *rand.Rand) []int {
	var touched []int
	for i := 0; i < d.Len(); i++ {
		switch r := rnd.Float64(); {
		case r < missing:
			_ = d.Set(i, "Price", data.NA())
		case r < missing+outliers:
			p, _ := d.At(i, "Price").Float()
			_ = d.Set(i, "Price", data.Num(p*100))
		default:
			continue
		}
		touched = append(touched, i)
	}
	return touched
}

func main() {
	rnd := rand.New(rand.NewSource(model.DefaultSeed))
	log, err := logging.New(os.Stderr, "warn", "console")
	if err != nil {
		panic(err)
	}

	fmt.Println("=== Outlier-Aware Imputation Demo ===")

	// Step 1. Generate dataset
	d, truth := generateHouses(1000, rnd)
	fmt.Printf("Generated %d houses with columns %v.\n", d.Len(), d.Names())

	// Step 2. Damage the target
	touched := corrupt(d, 0.05, 0.03, rnd)
	fmt.Printf("Corrupted %d prices (missing or inflated).\n", len(touched))

	// Step 3. Impute with every regressor and score against the hidden truth
	for _, kind := range model.Kinds {
		reg, err := model.New(kind, model.Params{Seed: model.DefaultSeed, Trees: 50})
		if err != nil {
			panic(err)
		}
		im := pipeline.NewImputer(pipeline.Config{Target: "Price"}, reg, log)
		out, rep, err := im.Run(context.Background(), d)
		if err != nil {
			panic(fmt.Sprintf("%s: imputation failed: %v", kind, err))
		}

		var want, got []float64
		for i := 0; i < out.Len(); i++ {
			if imputed, _ := out.At(i, "Price_imputed").Bool(); imputed {
				v, _ := out.At(i, "Price").Float()
				want = append(want, truth[i])
				got = append(got, v)
			}
		}
		fmt.Printf("\n[%s] outliers=%d imputed=%d bounds=[%.0f, %.0f]\n",
			kind, rep.Outliers, rep.Imputed, rep.Bounds.Lower, rep.Bounds.Upper)
		fmt.Printf("  RMSE vs truth: %.1f  MAE: %.1f  R2: %.3f\n",
			model.RMSE(want, got), model.MAE(want, got), model.R2(want, got))
		fmt.Printf("  price mean before %.0f, after %.0f\n", rep.Before.Mean, rep.After.Mean)
	}

	// Step 4. Reference: how far the corrupted column was from the truth
	var worst float64
	for _, i := range touched {
		if v, ok := d.At(i, "Price").Float(); ok {
			worst = math.Max(worst, math.Abs(v-truth[i]))
		}
	}
	fmt.Printf("\nLargest error left in the raw data: %.0f\n", worst)
}
