// Package preset provides named root/pole configurations ("scenes") that can
// be fed to the Newton engines without spelling every coordinate out.
package preset

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"strconv"
	"strings"
)

// MaxUnityOrder bounds the n accepted by the "unity<n>" preset.
const MaxUnityOrder = 1024

// Animation geometry: the scene is built in [-2.4, 2.4]² and mapped onto the
// unit square.
const (
	animationOrder = 7
	animationLimit = 2.4
)

// ErrUnknownPreset is returned by Lookup for names that match no preset.
var ErrUnknownPreset = errors.New("unknown preset")

// Scene is a named root/pole configuration.
type Scene struct {
	Name  string
	Roots []complex128
	Poles []complex128
}

// Unity returns the n-th roots of unity, starting at 1 and going
// counter-clockwise, with no poles. n <= 0 yields an empty root list.
func Unity(n int) Scene {
	s := Scene{Name: "unity" + strconv.Itoa(n)}
	if n <= 0 {
		return s
	}
	s.Roots = make([]complex128, n)
	for k := range s.Roots {
		s.Roots[k] = cmplx.Rect(1, 2*math.Pi*float64(k)/float64(n))
	}
	return s
}

// Animation returns the frame of the rotating 14-root / 14-pole scene at the
// given angle (radians).
//
// Poles sit on the unit circle at e^{kπi/7}. The first seven roots are
// e^{12kπi/7 + i·angle} scaled by 1 + sin(angle)/2, the last seven are
// e^{12kπi/7 − i·angle} scaled by 1 + cos(angle)/2. Everything is then shifted
// by the lower-left corner of [-2.4, 2.4]² and scaled by 1/4.8, so the whole
// scene lands in the unit square.
func Animation(angle float64) Scene {
	const n = animationOrder
	amp1 := 1.0 + 0.5*math.Sin(angle)
	amp2 := 1.0 + 0.5*math.Cos(angle)

	poles := make([]complex128, 0, 2*n)
	for k := 0; k < 2*n; k++ {
		poles = append(poles, cmplx.Exp(complex(0, float64(k)*math.Pi/n)))
	}

	roots := make([]complex128, 0, 2*n)
	for k := 0; k < n; k++ {
		roots = append(roots, cmplx.Exp(complex(0, float64(12*k)*math.Pi/n+angle))*complex(amp1, 0))
	}
	for k := 0; k < n; k++ {
		roots = append(roots, cmplx.Exp(complex(0, float64(12*k)*math.Pi/n-angle))*complex(amp2, 0))
	}

	for i := range poles {
		poles[i] = toUnitSquare(poles[i])
	}
	for i := range roots {
		roots[i] = toUnitSquare(roots[i])
	}

	return Scene{
		Name:  "anim:" + strconv.FormatFloat(angle, 'g', -1, 64),
		Roots: roots,
		Poles: poles,
	}
}

func toUnitSquare(z complex128) complex128 {
	corner := complex(-animationLimit, -animationLimit)
	factor := 1.0 / (2 * animationLimit)
	return (z - corner) * complex(factor, 0)
}

var catalog = map[string]func() Scene{
	"anim":   func() Scene { return named(Animation(0), "anim") },
	"unity3": func() Scene { return Unity(3) },
	"unity4": func() Scene { return Unity(4) },
	"unity5": func() Scene { return Unity(5) },
	"unity7": func() Scene { return Unity(7) },
	"unity3-pole": func() Scene {
		s := Unity(3)
		s.Name = "unity3-pole"
		s.Poles = []complex128{0}
		return s
	},
}

func named(s Scene, name string) Scene {
	s.Name = name
	return s
}

// Names returns the catalog of fixed preset names, sorted. Lookup also
// accepts the parametric forms "unity<n>" and "anim:<radians>".
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a preset name. Matching is case-insensitive and ignores
// surrounding whitespace.
func Lookup(name string) (Scene, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if build, ok := catalog[key]; ok {
		return build(), nil
	}

	switch {
	case strings.HasPrefix(key, "anim:"):
		angle, err := strconv.ParseFloat(strings.TrimPrefix(key, "anim:"), 64)
		if err != nil || math.IsNaN(angle) || math.IsInf(angle, 0) {
			return Scene{}, fmt.Errorf("%w: %q: invalid angle", ErrUnknownPreset, name)
		}
		return Animation(angle), nil

	case strings.HasPrefix(key, "unity"):
		n, err := strconv.Atoi(strings.TrimPrefix(key, "unity"))
		if err != nil || n < 1 || n > MaxUnityOrder {
			return Scene{}, fmt.Errorf("%w: %q: order must be between 1 and %d", ErrUnknownPreset, name, MaxUnityOrder)
		}
		return Unity(n), nil
	}

	return Scene{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}
