package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseComplex parses a finite complex literal in strconv.ParseComplex syntax:
// "1", "2i", "-0.5+0.866i" or "(1+2i)". Surrounding spaces are ignored.
func ParseComplex(s string) (complex128, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty complex number")
	}
	z, err := strconv.ParseComplex(s, 128)
	if err != nil {
		return 0, fmt.Errorf("invalid complex number %q", s)
	}
	if !isFinite(z) {
		return 0, fmt.Errorf("complex number %q is not finite", s)
	}
	return z, nil
}

// ParseComplexList parses a comma-separated list of complex literals. An
// empty or blank string is the empty list.
func ParseComplexList(s string) ([]complex128, error) {
	if strings.TrimSpace(s) == "" {
		return []complex128{}, nil
	}
	parts := strings.Split(s, ",")
	values := make([]complex128, 0, len(parts))
	for i, part := range parts {
		z, err := ParseComplex(part)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		values = append(values, z)
	}
	return values, nil
}

// FormatComplex renders z in the syntax accepted by ParseComplex, without
// the surrounding parentheses.
func FormatComplex(z complex128) string {
	s := strconv.FormatComplex(z, 'g', -1, 128)
	return strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
}

// FormatComplexList is the inverse of ParseComplexList.
func FormatComplexList(zs []complex128) string {
	parts := make([]string, len(zs))
	for i, z := range zs {
		parts[i] = FormatComplex(z)
	}
	return strings.Join(parts, ",")
}

func isFinite(z complex128) bool {
	re, im := real(z), imag(z)
	return !math.IsNaN(re) && !math.IsNaN(im) && !math.IsInf(re, 0) && !math.IsInf(im, 0)
}

// complexValue is a flag.Value holding one complex number.
type complexValue struct {
	value complex128
	set   bool
}

func (v *complexValue) String() string {
	if v == nil {
		return ""
	}
	return FormatComplex(v.value)
}

func (v *complexValue) Set(s string) error {
	z, err := ParseComplex(s)
	if err != nil {
		return err
	}
	v.value, v.set = z, true
	return nil
}

// complexListValue is a flag.Value holding a comma-separated complex list.
type complexListValue struct {
	values []complex128
	set    bool
}

func (v *complexListValue) String() string {
	if v == nil {
		return ""
	}
	return FormatComplexList(v.values)
}

func (v *complexListValue) Set(s string) error {
	zs, err := ParseComplexList(s)
	if err != nil {
		return err
	}
	v.values, v.set = zs, true
	return nil
}
