package config

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	apperrors "github.com/agbru/newtoncalc/internal/errors"
	"github.com/agbru/newtoncalc/internal/preset"
)

// SceneFile is the content of a JSON scene file.
//
//	{
//	  "name":    "cubic with a pole",
//	  "roots":   [[1, 0], "-0.5+0.866i", {"re": -0.5, "im": -0.866}],
//	  "poles":   [0],
//	  "maxiter": 50,
//	  "z0":      "0.4+0.9i"
//	}
//
// A complex value may be written as a number, a [re, im] pair, an
// {"re", "im"} object or a string literal. maxiter and z0 are optional.
type SceneFile struct {
	preset.Scene
	Z0      *complex128
	MaxIter *int64
}

// LoadScene reads and parses the scene file at path.
func LoadScene(path string) (SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SceneFile{}, apperrors.NewConfigError("cannot read scene file: %v", err)
	}
	scene, err := ParseScene(data)
	if err != nil {
		return SceneFile{}, apperrors.NewConfigError("scene file %s: %v", path, err)
	}
	return scene, nil
}

// ParseScene parses a scene document. The name defaults to "scene".
func ParseScene(data []byte) (SceneFile, error) {
	if !gjson.ValidBytes(data) {
		return SceneFile{}, fmt.Errorf("invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return SceneFile{}, fmt.Errorf("top-level value must be an object")
	}

	out := SceneFile{Scene: preset.Scene{Name: "scene"}}
	if name := doc.Get("name"); name.Exists() {
		out.Name = name.String()
	}

	var err error
	if out.Roots, err = complexArray(doc.Get("roots"), "roots"); err != nil {
		return SceneFile{}, err
	}
	if out.Poles, err = complexArray(doc.Get("poles"), "poles"); err != nil {
		return SceneFile{}, err
	}

	if r := doc.Get("maxiter"); r.Exists() {
		if r.Type != gjson.Number || r.Float() != float64(r.Int()) || r.Int() < 0 {
			return SceneFile{}, fmt.Errorf("maxiter must be a non-negative integer, got %s", r.Raw)
		}
		n := r.Int()
		out.MaxIter = &n
	}
	if r := doc.Get("z0"); r.Exists() {
		z, err := complexFromJSON(r)
		if err != nil {
			return SceneFile{}, fmt.Errorf("z0: %w", err)
		}
		out.Z0 = &z
	}
	return out, nil
}

func complexArray(r gjson.Result, field string) ([]complex128, error) {
	if !r.Exists() || r.Type == gjson.Null {
		return []complex128{}, nil
	}
	if !r.IsArray() {
		return nil, fmt.Errorf("%s must be an array", field)
	}
	items := r.Array()
	values := make([]complex128, 0, len(items))
	for i, item := range items {
		z, err := complexFromJSON(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		values = append(values, z)
	}
	return values, nil
}

func complexFromJSON(r gjson.Result) (complex128, error) {
	switch {
	case r.Type == gjson.Number:
		return complex(r.Float(), 0), nil
	case r.Type == gjson.String:
		return ParseComplex(r.String())
	case r.IsArray():
		parts := r.Array()
		if len(parts) != 2 || parts[0].Type != gjson.Number || parts[1].Type != gjson.Number {
			return 0, fmt.Errorf("expected [re, im], got %s", r.Raw)
		}
		return complex(parts[0].Float(), parts[1].Float()), nil
	case r.IsObject():
		re, im := r.Get("re"), r.Get("im")
		if re.Type != gjson.Number || (im.Exists() && im.Type != gjson.Number) {
			return 0, fmt.Errorf("expected {\"re\": number, \"im\": number}, got %s", r.Raw)
		}
		return complex(re.Float(), im.Float()), nil
	}
	return 0, fmt.Errorf("unsupported complex value %s", r.Raw)
}
