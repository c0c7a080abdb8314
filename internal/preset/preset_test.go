package preset

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agbru/newtoncalc/internal/newton"
)

func TestUnity(t *testing.T) {
	t.Parallel()

	s := Unity(3)
	want := []complex128{1, complex(-0.5, math.Sqrt(3)/2), complex(-0.5, -math.Sqrt(3)/2)}
	approx := cmp.Comparer(func(a, b complex128) bool { return cmplx.Abs(a-b) < 1e-15 })
	if diff := cmp.Diff(want, s.Roots, approx); diff != "" {
		t.Errorf("Unity(3) roots mismatch (-want +got):\n%s", diff)
	}
	if len(s.Poles) != 0 {
		t.Errorf("Unity(3) has poles: %v", s.Poles)
	}
	if s.Roots[0] != 1 {
		t.Errorf("first root = %v, want exactly 1", s.Roots[0])
	}

	if got := Unity(0); len(got.Roots) != 0 {
		t.Errorf("Unity(0) roots = %v", got.Roots)
	}
}

func TestUnity_RootsAreRoots(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 5, 12} {
		for _, r := range Unity(n).Roots {
			if d := cmplx.Abs(cmplx.Pow(r, complex(float64(n), 0)) - 1); d > 1e-12 {
				t.Errorf("Unity(%d): %v^%d differs from 1 by %g", n, r, n, d)
			}
		}
	}
}

func TestAnimation_Shape(t *testing.T) {
	t.Parallel()

	s := Animation(0.7)
	if len(s.Roots) != 14 || len(s.Poles) != 14 {
		t.Fatalf("Animation: %d roots, %d poles, want 14 each", len(s.Roots), len(s.Poles))
	}
	if s.Name != "anim:0.7" {
		t.Errorf("Name = %q", s.Name)
	}

	// Undo the unit-square mapping: poles lie on the unit circle.
	for _, p := range s.Poles {
		z := p*4.8 + complex(-2.4, -2.4)
		if d := math.Abs(cmplx.Abs(z) - 1); d > 1e-12 {
			t.Errorf("pole %v is %g off the unit circle", z, d)
		}
	}

	amp1 := 1 + 0.5*math.Sin(0.7)
	amp2 := 1 + 0.5*math.Cos(0.7)
	for i, r := range s.Roots {
		z := r*4.8 + complex(-2.4, -2.4)
		want := amp1
		if i >= 7 {
			want = amp2
		}
		if d := math.Abs(cmplx.Abs(z) - want); d > 1e-12 {
			t.Errorf("root %d has modulus %v, want %v", i, cmplx.Abs(z), want)
		}
	}
}

func TestAnimation_FitsUnitSquare_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("every point of every frame lies in the unit square", prop.ForAll(
		func(angle float64) bool {
			s := Animation(angle)
			for _, z := range append(append([]complex128(nil), s.Roots...), s.Poles...) {
				if real(z) < 0 || real(z) > 1 || imag(z) < 0 || imag(z) > 1 {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0, 2*math.Pi),
	))

	properties.TestingRun(t)
}

func TestAnimation_StartOnRootConverges(t *testing.T) {
	t.Parallel()

	s := Animation(1.0)
	res := newton.Iterate(30, s.Roots[0], s.Roots, s.Poles)
	if !res.Converged || res.Root != s.Roots[0] || res.Iterations != 0 {
		t.Errorf("Iterate from roots[0] = %+v", res)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantName  string
		wantRoots int
		wantPoles int
	}{
		{"catalog", "unity4", "unity4", 4, 0},
		{"case and space", "  UNITY5 ", "unity5", 5, 0},
		{"parametric unity", "unity11", "unity11", 11, 0},
		{"with pole", "unity3-pole", "unity3-pole", 3, 1},
		{"animation", "anim", "anim", 14, 14},
		{"animation angle", "anim:1.5", "anim:1.5", 14, 14},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s, err := Lookup(tc.input)
			if err != nil {
				t.Fatalf("Lookup(%q): %v", tc.input, err)
			}
			if s.Name != tc.wantName || len(s.Roots) != tc.wantRoots || len(s.Poles) != tc.wantPoles {
				t.Errorf("Lookup(%q) = %s with %d roots, %d poles", tc.input, s.Name, len(s.Roots), len(s.Poles))
			}
		})
	}
}

func TestLookup_Errors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "bogus", "unity0", "unity-2", "unity99999", "unityx", "anim:", "anim:abc", "anim:NaN", "anim:+Inf"} {
		if _, err := Lookup(input); !errors.Is(err, ErrUnknownPreset) {
			t.Errorf("Lookup(%q) error = %v, want ErrUnknownPreset", input, err)
		}
	}
}

func TestNames(t *testing.T) {
	t.Parallel()

	want := []string{"anim", "unity3", "unity3-pole", "unity4", "unity5", "unity7"}
	if diff := cmp.Diff(want, Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
	for _, name := range Names() {
		if _, err := Lookup(name); err != nil {
			t.Errorf("Lookup(%q): %v", name, err)
		}
	}
}

func TestLookup_ReturnsFreshSlices(t *testing.T) {
	t.Parallel()

	a, _ := Lookup("unity3")
	a.Roots[0] = 99
	b, _ := Lookup("unity3")
	if diff := cmp.Diff(Unity(3).Roots, b.Roots); diff != "" {
		t.Errorf("catalog entry was mutated through a previous result")
	}
}
