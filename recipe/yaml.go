package recipe

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/nasa-jpl/ccdclock/util"
)

// File is the layout of a YAML recipe file
type File struct {
	Recipes []Recipe `yaml:"recipes"`
}

// Load decodes the recipes in a YAML document.  Unknown keys are rejected so
// that a misspelled "of" for "off" does not silently drop a change.
func Load(r io.Reader) ([]Recipe, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "decoding recipes")
	}
	for i := range f.Recipes {
		rec := &f.Recipes[i]
		if rec.Name == "" {
			return nil, errors.Errorf("recipe %d has no name", i)
		}
		rec.HoldOn = util.UniqueString(rec.HoldOn)
		rec.HoldOff = util.UniqueString(rec.HoldOff)
	}
	return f.Recipes, nil
}

// LoadFile converts a (path to a) yaml file into recipes
func LoadFile(path string) ([]Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rs, err := Load(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return rs, nil
}

// LoadInto loads the recipes in each file into the book
func LoadInto(b *Book, paths ...string) error {
	for _, p := range paths {
		rs, err := LoadFile(p)
		if err != nil {
			return err
		}
		for _, r := range rs {
			if err := b.Register(r); err != nil {
				return errors.Wrap(err, p)
			}
		}
	}
	return nil
}

// Encode writes recipes as a YAML recipe file
func Encode(w io.Writer, rs ...Recipe) error {
	return yaml.NewEncoder(w).Encode(File{Recipes: rs})
}
