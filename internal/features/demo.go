package features

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidName is returned by SetName for names shorter than two characters
var ErrInvalidName = errors.New("name must have at least 2 characters")

// FeatureDemo keeps its feature list private and hands out copies
type FeatureDemo struct {
	name     string
	features []string
}

func NewFeatureDemo(name string) *FeatureDemo {
	return &FeatureDemo{name: name}
}

func (d *FeatureDemo) Name() string { return d.name }

// SetName replaces the name after validation
func (d *FeatureDemo) SetName(name string) error {
	if utf8.RuneCountInString(name) < 2 {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	d.name = name
	return nil
}

// AddFeature appends feature unless already present
func (d *FeatureDemo) AddFeature(feature string) {
	for _, f := range d.features {
		if f == feature {
			return
		}
	}
	d.features = append(d.features, feature)
}

// Features returns a copy of the feature list
func (d *FeatureDemo) Features() []string {
	return append([]string{}, d.features...)
}

// Score is ten points per feature
func (d *FeatureDemo) Score() int {
	return len(d.features) * 10
}

func (d *FeatureDemo) String() string {
	return fmt.Sprintf("FeatureDemo(name='%s', features=%d, score=%d)", d.name, len(d.features), d.Score())
}
