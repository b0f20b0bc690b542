package features

import (
	"fmt"

	"github.com/go-while/go-paradigmas/internal/config"
)

// FrameworkFeatures lists what the web layer demonstrates
var FrameworkFeatures = []string{"Rotas", "Templates", "JSON API", "CORS"}

// Report is the payload of /api/python-features
type Report struct {
	FunctionalAnalysis Analysis       `json:"functional_analysis"`
	OOPProcessing      ProcessResult  `json:"oop_processing"`
	SingletonConfig    map[string]any `json:"singleton_config"`
	PythonParadigmas   []string       `json:"python_paradigmas"`
	FlaskFeatures      []string       `json:"flask_features"`
	TypeDispatch       map[string]any `json:"type_dispatch"`
	FeatureDemo        map[string]any `json:"feature_demo"`
}

// Showcase assembles a Report from the configured demo inputs
type Showcase struct {
	analyzer  *Analyzer
	processor Processor
	sample    []int
	input     string
}

func NewShowcase(cfg config.DemoConfig) *Showcase {
	return &Showcase{
		analyzer:  NewAnalyzer(cfg.AnalysisTTL),
		processor: NewLanguageProcessor(cfg.ProcessorName, cfg.ProcessorVersion, cfg.ProcessorFeatures),
		sample:    append([]int{}, cfg.SampleNumbers...),
		input:     cfg.ProcessorInput,
	}
}

// Report runs every demo once. Analysis results are cached.
func (s *Showcase) Report() (*Report, error) {
	processed, err := s.processor.Process(s.input)
	if err != nil {
		return nil, fmt.Errorf("failed to build features report: %w", err)
	}

	demo := NewFeatureDemo("Python Demo")
	for _, f := range []string{"Legibilidade", "Simplicidade", "Versatilidade"} {
		demo.AddFeature(f)
	}

	return &Report{
		FunctionalAnalysis: s.analyzer.Analyze(s.sample),
		OOPProcessing:      processed,
		SingletonConfig:    Settings().Subset("app_name", "version", "features"),
		PythonParadigmas:   append([]string{}, DefaultParadigms...),
		FlaskFeatures:      append([]string{}, FrameworkFeatures...),
		TypeDispatch: map[string]any{
			"string":  DescribeValue("Python"),
			"integer": DescribeValue(12),
			"list":    DescribeValue([]string{"Python", "JavaScript"}),
			"dict":    DescribeValue(map[string]any{"paradigma": "funcional", "tipagem": "dinâmica"}),
		},
		FeatureDemo: map[string]any{
			"name":     demo.Name(),
			"features": demo.Features(),
			"score":    demo.Score(),
			"summary":  demo.String(),
		},
	}, nil
}

// CacheStats returns the analysis cache statistics
func (s *Showcase) CacheStats() map[string]interface{} {
	return s.analyzer.CacheStats()
}

// Stop releases background resources
func (s *Showcase) Stop() {
	s.analyzer.Stop()
}
