package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/agbru/newtoncalc/internal/newton"
	"github.com/agbru/newtoncalc/pkg/models"
)

// GoldenCase is one entry of the golden file.
type GoldenCase struct {
	Name      string           `json:"name"`
	MaxIter   int64            `json:"maxiter"`
	Z0        models.Complex   `json:"z0"`
	Roots     []models.Complex `json:"roots"`
	Poles     []models.Complex `json:"poles"`
	Converged bool             `json:"converged"`
	Root      *models.Complex  `json:"root,omitempty"`
	Outcome   string           `json:"outcome"`
}

type target struct {
	name    string
	maxiter int64
	z0      complex128
	roots   []complex128
	poles   []complex128
}

var (
	cube    = []complex128{1, complex(-0.5, math.Sqrt(3)/2), complex(-0.5, -math.Sqrt(3)/2)}
	quartic = []complex128{1, 1i, -1, -1i}
)

var targets = []target{
	{"cube near one", 50, 0.9 + 0.1i, cube, nil},
	{"cube upper", 50, -0.4 + 0.9i, cube, nil},
	{"cube lower", 50, -0.6 - 0.8i, cube, nil},
	{"cube far", 100, 4 + 3i, cube, nil},
	{"quartic with pole", 60, 0.9 + 0.3i, quartic, []complex128{0}},
	{"quartic negative axis", 60, -1.3 + 0.2i, quartic, []complex128{0}},
	{"pair with pole", 50, 2 + 1i, []complex128{1, -1}, []complex128{0}},
	{"linear", 10, 3 + 0.5i, []complex128{0}, nil},
	{"at root", 10, 1, []complex128{1}, nil},
	{"on pole", 50, 0, []complex128{1}, []complex128{0}},
	{"double root at root", 30, 1, []complex128{1, 1}, nil},
	{"empty", 30, 0.3 + 0.7i, nil, nil},
	{"pole only", 50, 5, nil, []complex128{0}},
	{"zero budget", 0, 1, []complex128{1}, nil},
	{"rational mixed", 80, 0.2 + 0.1i, []complex128{0, 2}, []complex128{1 + 1i}},
	{"root near pole", 50, 1.2 + 0.3i, []complex128{1}, []complex128{3}},
}

func main() {
	outputDir := flag.String("out", "internal/newton/testdata", "Output directory for the golden file")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	filename := filepath.Join(*outputDir, "newton_golden.json")
	file, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	fmt.Println("Generating golden data...")

	data := make([]GoldenCase, 0, len(targets))
	for _, tg := range targets {
		gc := oracle(tg)
		data = append(data, gc)
		fmt.Printf("Generated %q: %s\n", tg.name, gc.Outcome)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated golden file at %s\n", filename)
}

// oracle runs Newton's method with f = N/D expanded by the quotient rule,
// independently of the engine's evaluators. Only the thresholds are shared.
func oracle(tg target) GoldenCase {
	gc := GoldenCase{
		Name:    tg.name,
		MaxIter: tg.maxiter,
		Z0:      models.FromComplex(tg.z0),
		Roots:   models.FromComplexList(tg.roots),
		Poles:   models.FromComplexList(tg.poles),
		Outcome: newton.OutcomeExhausted.String(),
	}

	z := tg.z0
	for i := int64(0); i < tg.maxiter; i++ {
		for _, p := range tg.poles {
			if norm(z-p) < newton.PoleEpsilonSqr {
				gc.Outcome = newton.OutcomePoleProximity.String()
				return gc
			}
		}

		n, dn := product(z, tg.roots)
		d, dd := product(z, tg.poles)
		f := n / d
		df := (dn*d - n*dd) / (d * d)

		if norm(df) <= newton.DerivativeEpsilonSqr {
			gc.Outcome = newton.OutcomeDegenerateDerivative.String()
			return gc
		}
		if norm(f) <= newton.ValueEpsilon {
			if len(tg.roots) == 0 {
				gc.Outcome = newton.OutcomeNoRoots.String()
				return gc
			}
			root := models.FromComplex(nearest(z, tg.roots))
			gc.Converged, gc.Root = true, &root
			gc.Outcome = newton.OutcomeConverged.String()
			return gc
		}
		z -= f / df
	}
	return gc
}

// product returns Π(z-a) and its derivative by the product rule.
func product(z complex128, as []complex128) (value, derivative complex128) {
	value = 1
	for i := range as {
		term := complex128(1)
		for j, a := range as {
			if j != i {
				term *= z - a
			}
		}
		derivative += term
		value *= z - as[i]
	}
	return value, derivative
}

func nearest(z complex128, roots []complex128) complex128 {
	sorted := append([]complex128(nil), roots...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return norm(z-sorted[i]) < norm(z-sorted[j])
	})
	return sorted[0]
}

func norm(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}
