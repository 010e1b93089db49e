// Package catalog holds the immutable registry of developer tools and the
// instruction templates that wrap a caller's prompt for each of them.
//
// The registry is built once at start-up from the embedded tools.yaml and
// the built-in renderer set. Construction fails when an id is duplicated or
// when definitions and renderers do not cover each other exactly, so a
// missing template surfaces before the server starts serving traffic.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound is returned by Get for an id absent from the catalog.
	ErrNotFound = errors.New("tool not found")
	// ErrUnknownTool is returned by Render for an id without a renderer.
	ErrUnknownTool = errors.New("unknown tool")
)

//go:embed tools.yaml
var toolsYAML []byte

// ToolDefinition is the public metadata of one tool. The renderer is held
// by the Catalog and never serialized.
type ToolDefinition struct {
	ID                string `json:"id"                yaml:"id"                example:"fix-bug"`
	Name              string `json:"name"              yaml:"name"              example:"Fix Bug"`
	Description       string `json:"description"       yaml:"description"       example:"Identify and fix issues in your code"`
	Icon              string `json:"icon"              yaml:"icon"              example:"bug"`
	Category          string `json:"category"          yaml:"category"          example:"Debugging"`
	PlaceholderPrompt string `json:"placeholderPrompt" yaml:"placeholderPrompt"`
}

type document struct {
	Tools []ToolDefinition `yaml:"tools"`
}

// Catalog is a read-only tool registry. It is safe for concurrent use
// because nothing mutates it after New returns.
type Catalog struct {
	tools      []ToolDefinition
	index      map[string]int
	renderers  map[string]Renderer
	categories []string
}

// Load builds the catalog from the embedded definitions and the built-in
// templates.
func Load() (*Catalog, error) {
	defs, err := Parse(toolsYAML)
	if err != nil {
		return nil, err
	}
	return New(defs, builtinTemplates)
}

// MustLoad is Load that panics on error. The embedded data is fixed at
// build time, so a failure here is a programming error.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes a YAML tool document.
func Parse(data []byte) ([]ToolDefinition, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode tools: %w", err)
	}
	return doc.Tools, nil
}

// New validates defs against renderers and returns an immutable Catalog.
func New(defs []ToolDefinition, renderers map[string]Renderer) (*Catalog, error) {
	c := &Catalog{
		tools:     make([]ToolDefinition, 0, len(defs)),
		index:     make(map[string]int, len(defs)),
		renderers: make(map[string]Renderer, len(defs)),
	}
	seenCat := make(map[string]struct{})

	for _, d := range defs {
		d.ID = strings.TrimSpace(d.ID)
		if d.ID == "" {
			return nil, errors.New("catalog: tool with empty id")
		}
		if _, dup := c.index[d.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate tool id %q", d.ID)
		}
		r, ok := renderers[d.ID]
		if !ok || r == nil {
			return nil, fmt.Errorf("catalog: tool %q has no template", d.ID)
		}
		c.index[d.ID] = len(c.tools)
		c.tools = append(c.tools, d)
		c.renderers[d.ID] = r

		if _, ok := seenCat[d.Category]; !ok {
			seenCat[d.Category] = struct{}{}
			c.categories = append(c.categories, d.Category)
		}
	}
	for id := range renderers {
		if _, ok := c.index[id]; !ok {
			return nil, fmt.Errorf("catalog: template %q has no tool definition", id)
		}
	}
	return c, nil
}

// Get returns the tool with the given id, or ErrNotFound.
func (c *Catalog) Get(id string) (ToolDefinition, error) {
	i, ok := c.index[id]
	if !ok {
		return ToolDefinition{}, ErrNotFound
	}
	return c.tools[i], nil
}

// List returns every tool in definition order.
func (c *Catalog) List() []ToolDefinition {
	out := make([]ToolDefinition, len(c.tools))
	copy(out, c.tools)
	return out
}

// ListByCategory returns tools whose category equals category exactly.
// The comparison is case-sensitive.
func (c *Catalog) ListByCategory(category string) []ToolDefinition {
	out := []ToolDefinition{}
	for _, t := range c.tools {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Search returns tools whose name or description contains query, compared
// under Unicode case folding.
func (c *Catalog) Search(query string) []ToolDefinition {
	// A Caser is stateful; one per call keeps Search safe for concurrent use.
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	out := []ToolDefinition{}
	for _, t := range c.tools {
		if strings.Contains(fold.String(t.Name), q) || strings.Contains(fold.String(t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Render wraps prompt in the instruction template for id.
func (c *Catalog) Render(id, prompt string) (string, error) {
	r, ok := c.renderers[id]
	if !ok {
		return "", ErrUnknownTool
	}
	return r.Render(prompt), nil
}

// Suggest returns the known id closest to id, if any is close enough to be
// a plausible typo.
func (c *Catalog) Suggest(id string) (string, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return "", false
	}
	best, bestDist := "", -1
	for _, t := range c.tools {
		d := matchr.Levenshtein(id, t.ID)
		if bestDist < 0 || d < bestDist {
			best, bestDist = t.ID, d
		}
	}
	if bestDist < 0 {
		return "", false
	}
	maxDist := utf8.RuneCountInString(best) / 3
	if maxDist < 2 {
		maxDist = 2
	}
	if bestDist <= maxDist || matchr.JaroWinkler(id, best, false) >= 0.9 {
		return best, true
	}
	return "", false
}
