// Package models defines core data structures for go-paradigmas
package models

import (
	"time"
)

// TimelineEntry is one dated milestone in a language history page
type TimelineEntry struct {
	Year  string `json:"year" yaml:"year"`
	Event string `json:"event" yaml:"event"`
}

// Paradigm describes a programming paradigm supported by a language
type Paradigm struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Features    []string `json:"features" yaml:"features"`
	Anchor      string   `json:"anchor" yaml:"-"`
}

// Feature is a named characteristic with a short description
type Feature struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Anchor      string `json:"anchor" yaml:"-"`
}

// Influence is a related language, either influencing or influenced.
// Type, Year, UseCase and Features are optional.
type Influence struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type,omitempty" yaml:"type"`
	Year        string   `json:"year,omitempty" yaml:"year"`
	Description string   `json:"description" yaml:"description"`
	UseCase     string   `json:"use_case,omitempty" yaml:"use_case"`
	Features    []string `json:"features,omitempty" yaml:"features"`
	Anchor      string   `json:"anchor" yaml:"-"`
}

// CodeExample is a snippet rendered inside pre > code
type CodeExample struct {
	Name        string `json:"name" yaml:"name"`
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
	Language    string `json:"language" yaml:"language"`
	Anchor      string `json:"anchor" yaml:"-"`
}

// ExecutionStep is one stage of an interpreter pipeline
type ExecutionStep struct {
	Step        string `json:"step" yaml:"step"`
	Description string `json:"description" yaml:"description"`
}

// Page holds the content of one presentation page. Only the fields used by
// the page's template are filled.
type Page struct {
	Slug        string   `json:"slug" yaml:"-"`
	Path        string   `json:"path" yaml:"-"`
	Language    string   `json:"language" yaml:"-"`
	Title       string   `json:"title" yaml:"title"`
	Subtitle    string   `json:"subtitle,omitempty" yaml:"subtitle"`
	Description string   `json:"description,omitempty" yaml:"description"`
	KeyPoints   []string `json:"key_points,omitempty" yaml:"key_points"`

	Timeline    []TimelineEntry `json:"timeline,omitempty" yaml:"timeline"`
	Creator     string          `json:"creator,omitempty" yaml:"creator"`
	Origin      string          `json:"origin,omitempty" yaml:"origin"`
	Inspiration string          `json:"inspiration,omitempty" yaml:"inspiration"`
	Development string          `json:"development,omitempty" yaml:"development"`

	Paradigms []Paradigm `json:"paradigms,omitempty" yaml:"paradigms"`
	Features  []Feature  `json:"features,omitempty" yaml:"features"`

	Influences             []Influence `json:"influences,omitempty" yaml:"influences"`
	Influenced             []Influence `json:"influenced,omitempty" yaml:"influenced"`
	TranspilationEcosystem []string    `json:"transpilation_ecosystem,omitempty" yaml:"transpilation_ecosystem"`

	Examples []CodeExample `json:"examples,omitempty" yaml:"examples"`

	Philosophy     string          `json:"philosophy,omitempty" yaml:"philosophy"`
	ExecutionModel []ExecutionStep `json:"execution_model,omitempty" yaml:"execution_model"`
	Abstractions   []string        `json:"abstractions,omitempty" yaml:"abstractions"`

	Content      string   `json:"content,omitempty" yaml:"content"`
	KeyTakeaways []string `json:"key_takeaways,omitempty" yaml:"key_takeaways"`
	References   []string `json:"references,omitempty" yaml:"references"`
}

// Cover holds the presentation title and its authors
type Cover struct {
	Title   string `json:"title" yaml:"title"`
	Author  string `json:"author" yaml:"author"`
	Author2 string `json:"author2" yaml:"author2"`
}

// NavItem is a sidebar link
type NavItem struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// NavSection groups sidebar links under a heading
type NavSection struct {
	Title string     `json:"title"`
	Items []*NavItem `json:"items"`
}

// PageView is the stored view counter of one route
type PageView struct {
	Path     string    `json:"path" db:"path"`
	Views    int64     `json:"views" db:"views"`
	LastSeen time.Time `json:"last_seen" db:"last_seen"`
}
