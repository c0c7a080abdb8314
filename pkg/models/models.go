// Package models defines the JSON records exchanged at the edges of the
// program: the CLI's -json output, the result file and the HTTP API.
//
// The core engine types carry no JSON tags; conversion happens here.
package models

import (
	"encoding/json"
	"fmt"
)

// Complex is the JSON shape of a complex number: {"re": 1, "im": -0.5}.
type Complex struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

// FromComplex converts z.
func FromComplex(z complex128) Complex {
	return Complex{Re: real(z), Im: imag(z)}
}

// Complex128 converts c back.
func (c Complex) Complex128() complex128 {
	return complex(c.Re, c.Im)
}

// FromComplexList converts zs; the result is never nil, so it encodes as
// [] rather than null.
func FromComplexList(zs []complex128) []Complex {
	out := make([]Complex, len(zs))
	for i, z := range zs {
		out[i] = FromComplex(z)
	}
	return out
}

// ToComplexList converts cs back; nil stays an empty list.
func ToComplexList(cs []Complex) []complex128 {
	out := make([]complex128, len(cs))
	for i, c := range cs {
		out[i] = c.Complex128()
	}
	return out
}

// IterEnd is the boundary record of one trajectory. Z is null when the
// trajectory did not converge, in which case Niter equals the budget.
type IterEnd struct {
	Z     *Complex `json:"z"`
	Niter int64    `json:"niter"`
}

// NewIterEnd builds the record from an optional root.
func NewIterEnd(z *complex128, niter int64) IterEnd {
	end := IterEnd{Niter: niter}
	if z != nil {
		c := FromComplex(*z)
		end.Z = &c
	}
	return end
}

// Converged reports whether Z is set.
func (e IterEnd) Converged() bool {
	return e.Z != nil
}

// String renders the record as "<root> <niter>" or "none <niter>".
func (e IterEnd) String() string {
	if e.Z == nil {
		return fmt.Sprintf("none %d", e.Niter)
	}
	return fmt.Sprintf("%v %d", e.Z.Complex128(), e.Niter)
}

// IterationResult is one engine's entry in the -json output and the body
// of a successful /iterate response. Status is "converged" or
// "not_converged"; why a trajectory stopped is never part of the record.
type IterationResult struct {
	IterEnd
	Algorithm string `json:"algorithm"`
	Status    string `json:"status,omitempty"`
	Duration  string `json:"duration"`
	Error     string `json:"error,omitempty"`
}

// IterateRequest is the body of POST /iterate. Omitted fields fall back to
// the server defaults; explicit roots or poles override the preset's.
type IterateRequest struct {
	MaxIter *int64    `json:"maxiter,omitempty"`
	Z0      *Complex  `json:"z0,omitempty"`
	Roots   []Complex `json:"roots,omitempty"`
	Poles   []Complex `json:"poles,omitempty"`
	Preset  string    `json:"preset,omitempty"`
	Algo    string    `json:"algo,omitempty"`
}

// ResultFile is the document written by -output.
type ResultFile struct {
	Generated string          `json:"generated"`
	MaxIter   int64           `json:"maxiter"`
	Z0        Complex         `json:"z0"`
	Roots     []Complex       `json:"roots"`
	Poles     []Complex       `json:"poles"`
	Result    IterationResult `json:"result"`
}

// Encode marshals v with two-space indentation and a trailing newline.
func Encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
