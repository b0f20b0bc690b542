package features

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrNilData is returned when a processor is handed no data
var ErrNilData = errors.New("no data to process")

// DefaultParadigms are used when a processor is built without features
var DefaultParadigms = []string{"POO", "Funcional", "Imperativa"}

// ProcessResult is the output of a Processor
type ProcessResult struct {
	Processor         string         `json:"processor"`
	Version           string         `json:"version"`
	ProcessedFeatures []string       `json:"processed_features"`
	FeatureLengths    map[string]int `json:"feature_lengths"`
	OriginalData      any            `json:"original_data"`
}

// Processor transforms arbitrary input data
type Processor interface {
	Process(data any) (ProcessResult, error)
	Validate(data any) bool
}

// LanguageProcessor describes its language features in every result
type LanguageProcessor struct {
	Name     string
	Version  string
	Features []string
}

// NewLanguageProcessor builds a processor. An empty feature list
// falls back to DefaultParadigms.
func NewLanguageProcessor(name, version string, features []string) *LanguageProcessor {
	if len(features) == 0 {
		features = DefaultParadigms
	}
	return &LanguageProcessor{
		Name:     name,
		Version:  version,
		Features: append([]string{}, features...),
	}
}

// Validate reports whether there is data at all. Empty values such as
// "" are valid input.
func (p *LanguageProcessor) Validate(data any) bool {
	return data != nil
}

// Process upper-cases every feature longer than two characters, maps each
// feature to its length and echoes data.
func (p *LanguageProcessor) Process(data any) (ProcessResult, error) {
	var result ProcessResult
	err := Monitor("Processamento de dados - "+p.Name, func() error {
		if !p.Validate(data) {
			return ErrNilData
		}
		processed := make([]string, 0, len(p.Features))
		lengths := make(map[string]int, len(p.Features))
		for _, f := range p.Features {
			n := utf8.RuneCountInString(f)
			if n > 2 {
				processed = append(processed, strings.ToUpper(f))
			}
			lengths[f] = n
		}
		result = ProcessResult{
			Processor:         p.Name,
			Version:           p.Version,
			ProcessedFeatures: processed,
			FeatureLengths:    lengths,
			OriginalData:      data,
		}
		return nil
	})
	if err != nil {
		return ProcessResult{}, fmt.Errorf("processor %s: %w", p.Name, err)
	}
	return result, nil
}
