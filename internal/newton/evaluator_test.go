package newton

import (
	"errors"
	"math/cmplx"
	"testing"
)

func TestCompute_EmptyLists(t *testing.T) {
	t.Parallel()

	for _, z := range []complex128{0, 1, -3 + 2i, 1e10 - 1e-10i} {
		got, err := Compute(z, nil, nil)
		if err != nil {
			t.Fatalf("Compute(%v) unexpected error: %v", z, err)
		}
		if got != 1 {
			t.Errorf("Compute(%v, [], []) = %v, want 1", z, got)
		}

		d, err := Derive(z, nil, nil)
		if err != nil {
			t.Fatalf("Derive(%v) unexpected error: %v", z, err)
		}
		if d != 0 {
			t.Errorf("Derive(%v, [], []) = %v, want 0", z, d)
		}
	}
}

func TestCompute_SingleRoot(t *testing.T) {
	t.Parallel()

	r := complex(0.25, -1.5)
	roots := []complex128{r}
	for _, z := range []complex128{0, 2 + 2i, r, -7.5 + 0.125i} {
		got, err := Compute(z, roots, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != z-r {
			t.Errorf("Compute(%v) = %v, want %v", z, got, z-r)
		}

		d, err := Derive(z, roots, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d != 1 {
			t.Errorf("Derive(%v) = %v, want 1", z, d)
		}
	}
}

func TestCompute_SinglePole(t *testing.T) {
	t.Parallel()

	p := complex(1, 1)
	poles := []complex128{p}
	for _, z := range []complex128{0, 3 - 2i, -4 + 0.5i} {
		got, err := Compute(z, nil, poles)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := 1 / (z - p)
		if cmplx.Abs(got-want) > 1e-15*cmplx.Abs(want) {
			t.Errorf("Compute(%v) = %v, want %v", z, got, want)
		}

		d, err := Derive(z, nil, poles)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		wantD := -1 / ((z - p) * (z - p))
		if cmplx.Abs(d-wantD) > 1e-14*cmplx.Abs(wantD) {
			t.Errorf("Derive(%v) = %v, want %v", z, d, wantD)
		}
	}
}

func TestCompute_PoleProximity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		z     complex128
		roots []complex128
		poles []complex128
	}{
		{"on the pole", 0, nil, []complex128{0}},
		{"within epsilon", complex(1e-151, 0), nil, []complex128{0}},
		{"second pole", 2, nil, []complex128{5, 2}},
		{"behind roots", 1i, []complex128{3, 4}, []complex128{1i}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Compute(tc.z, tc.roots, tc.poles)
			if !errors.Is(err, ErrPoleProximity) {
				t.Errorf("Compute error = %v, want ErrPoleProximity", err)
			}
			_, err = Derive(tc.z, tc.roots, tc.poles)
			if !errors.Is(err, ErrPoleProximity) {
				t.Errorf("Derive error = %v, want ErrPoleProximity", err)
			}

			var pe *PoleProximityError
			if !errors.As(err, &pe) {
				t.Fatalf("error %v is not a *PoleProximityError", err)
			}
			if pe.Z != tc.z {
				t.Errorf("PoleProximityError.Z = %v, want %v", pe.Z, tc.z)
			}
		})
	}
}

func TestCompute_JustOutsidePoleEpsilon(t *testing.T) {
	t.Parallel()

	// |d|² = 1e-298 is above the 1e-300 threshold.
	z := complex(1e-149, 0)
	if _, err := Compute(z, nil, []complex128{0}); err != nil {
		t.Errorf("Compute unexpectedly failed: %v", err)
	}
}

func TestCompute_RationalFunction(t *testing.T) {
	t.Parallel()

	roots := []complex128{1, -1, 2i}
	poles := []complex128{3, -3i}
	z := complex(0.5, 0.25)

	got, err := Compute(z, roots, poles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (z - 1) * (z + 1) * (z - 2i) / ((z - 3) * (z + 3i))
	if cmplx.Abs(got-want) > 1e-14*cmplx.Abs(want) {
		t.Errorf("Compute = %v, want %v", got, want)
	}

	d, err := Derive(z, roots, poles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// f'/f = Σ 1/(z−r) − Σ 1/(z−p)
	logDeriv := 1/(z-1) + 1/(z+1) + 1/(z-2i) - 1/(z-3) - 1/(z+3i)
	wantD := want * logDeriv
	if cmplx.Abs(d-wantD) > 1e-13*cmplx.Abs(wantD) {
		t.Errorf("Derive = %v, want %v", d, wantD)
	}
}

func TestCompute_RepeatedRoot(t *testing.T) {
	t.Parallel()

	roots := []complex128{2, 2}
	z := complex(5, 0)

	f, _ := Compute(z, roots, nil)
	if f != 9 {
		t.Errorf("Compute = %v, want 9", f)
	}
	d, _ := Derive(z, roots, nil)
	if d != 6 {
		t.Errorf("Derive = %v, want 6", d)
	}
}

func TestCompute_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	roots := []complex128{1, 2, 3}
	poles := []complex128{-1, -2}
	rootsCopy := append([]complex128(nil), roots...)
	polesCopy := append([]complex128(nil), poles...)

	_, _ = Compute(0.5i, roots, poles)
	_, _ = Derive(0.5i, roots, poles)

	for i := range roots {
		if roots[i] != rootsCopy[i] {
			t.Fatalf("roots mutated: %v", roots)
		}
	}
	for i := range poles {
		if poles[i] != polesCopy[i] {
			t.Fatalf("poles mutated: %v", poles)
		}
	}
}

func BenchmarkDerive(b *testing.B) {
	roots := []complex128{1, -0.5 + 0.866i, -0.5 - 0.866i, 2, -2, 3i}
	poles := []complex128{0.1, 0.2i, -0.3}
	z := complex(0.7, 0.4)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Derive(z, roots, poles)
	}
}
