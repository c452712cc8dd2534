package lessons

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopulse/domain/core"
	"gopulse/domain/stats"

	"github.com/adrg/xdg"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"
)

// AppName is the directory used under the XDG config home.
const AppName = "gopulse"

// CatalogFile is the override file name looked up under the XDG config home.
const CatalogFile = "lessons.yaml"

//go:embed catalog.yaml
var embeddedCatalog []byte

// Kind says which analysis a lesson runs.
type Kind string

const (
	KindComparison Kind = "comparison"
	KindRegression Kind = "regression"
	KindAssessment Kind = "assessment"
	KindUpload     Kind = "upload"
)

// Lesson is one dashboard page.
type Lesson struct {
	Slug      string          `yaml:"slug" json:"slug"`
	Title     string          `yaml:"title" json:"title"`
	Kind      Kind            `yaml:"kind" json:"kind"`
	Summary   string          `yaml:"summary" json:"summary"`
	Metric    string          `yaml:"metric,omitempty" json:"metric,omitempty"`
	Unit      string          `yaml:"unit,omitempty" json:"unit,omitempty"`
	Value     *float64        `yaml:"value,omitempty" json:"value,omitempty"`
	Limit     *float64        `yaml:"limit,omitempty" json:"limit,omitempty"`
	Direction stats.Direction `yaml:"direction,omitempty" json:"direction,omitempty"`
	PredictAt float64         `yaml:"predict_at,omitempty" json:"predict_at,omitempty"`
	Body      string          `yaml:"narrative" json:"narrative"`
}

// HasLimit reports whether the lesson grades its metric against a limit.
func (l Lesson) HasLimit() bool {
	return l.Limit != nil
}

// Narrative renders the lesson's markdown body to HTML.
func (l Lesson) Narrative() string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return string(markdown.ToHTML([]byte(l.Body), p, renderer))
}

// Catalog is the ordered set of lessons.
type Catalog struct {
	Lessons []Lesson `yaml:"lessons"`
	Source  string   `yaml:"-"`

	bySlug map[string]int
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return parse(embeddedCatalog, "embedded")
}

// Load reads the catalog from path when given, then from
// $XDG_CONFIG_HOME/gopulse/lessons.yaml, and falls back to the embedded one.
func Load(path string) (*Catalog, error) {
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied catalog path
		if err != nil {
			return nil, fmt.Errorf("read lesson catalog %s: %w", path, err)
		}
		return parse(data, path)
	}

	if found := FindCatalogFile(); found != "" {
		data, err := os.ReadFile(found) //nolint:gosec // path built from the XDG config home
		if err != nil {
			return nil, fmt.Errorf("read lesson catalog %s: %w", found, err)
		}
		return parse(data, found)
	}

	return Default()
}

// FindCatalogFile returns the XDG override path if the file exists.
func FindCatalogFile() string {
	candidate := filepath.Join(xdg.ConfigHome, AppName, CatalogFile)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

func parse(data []byte, source string) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, core.NewInvalidInputError("lesson catalog", err.Error())
	}
	c.Source = source

	if len(c.Lessons) == 0 {
		return nil, core.NewInvalidInputError("lesson catalog", "no lessons defined")
	}

	c.bySlug = make(map[string]int, len(c.Lessons))
	for i, l := range c.Lessons {
		if err := validate(l); err != nil {
			return nil, err
		}
		if _, dup := c.bySlug[l.Slug]; dup {
			return nil, core.NewInvalidInputError("lesson catalog", fmt.Sprintf("duplicate slug %q", l.Slug))
		}
		c.bySlug[l.Slug] = i
	}
	return &c, nil
}

func validate(l Lesson) error {
	field := fmt.Sprintf("lesson %q", l.Slug)
	if l.Slug == "" || l.Title == "" {
		return core.NewInvalidInputError(field, "slug and title are required")
	}
	switch l.Kind {
	case KindComparison, KindRegression, KindUpload:
	case KindAssessment:
		if l.Value == nil || l.Limit == nil {
			return core.NewInvalidInputError(field, "assessment lessons need a value and a limit")
		}
	default:
		return core.NewInvalidInputError(field, fmt.Sprintf("unknown kind %q", l.Kind))
	}
	if l.Limit != nil && l.Direction != stats.LowerIsBetter && l.Direction != stats.HigherIsBetter {
		return core.NewInvalidInputError(field, fmt.Sprintf("unknown direction %q", l.Direction))
	}
	return nil
}

// Get returns the lesson with the given slug.
func (c *Catalog) Get(slug string) (Lesson, error) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Lesson{}, core.NewNotFoundError(core.ErrLessonNotFound, slug)
	}
	return c.Lessons[i], nil
}

// All returns the lessons in catalog order.
func (c *Catalog) All() []Lesson {
	return append([]Lesson(nil), c.Lessons...)
}
