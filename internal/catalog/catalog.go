// Package catalog holds the tool records that drive page generation.
//
// A Catalog is an immutable, ordered list of Tool records. The default catalog
// ships embedded in the binary as default.yaml; alternative catalogs use the
// same YAML layout:
//
//	tools:
//	  - name: Google Analytics
//	    category: analytics
//	    compliant: false        # true | false | partial
//	    reason: Sends data to US servers
//	    alternative: Fathom Analytics
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Tool is one catalog record.
type Tool struct {
	Name      string     `yaml:"name"`
	Category  string     `yaml:"category"`
	Compliant Compliance `yaml:"compliant"`
	Reason    string     `yaml:"reason"`
	// Alternative names a recommended replacement. Empty means absent.
	Alternative string `yaml:"alternative,omitempty"`
}

// Slug returns the filename/URL identifier derived from the tool name.
func (t Tool) Slug() string {
	return Slug(t.Name)
}

// HasAlternative reports whether a replacement is recommended.
func (t Tool) HasAlternative() bool {
	return t.Alternative != ""
}

// Catalog is an ordered, read-only sequence of tools.
type Catalog struct {
	tools []Tool
}

// file is the on-disk YAML layout.
type file struct {
	Tools []Tool `yaml:"tools"`
}

// New returns a catalog holding a copy of tools. It does not validate.
func New(tools []Tool) Catalog {
	cp := make([]Tool, len(tools))
	copy(cp, tools)
	return Catalog{tools: cp}
}

// Default returns the embedded catalog.
func Default() (Catalog, error) {
	c, err := Parse(defaultYAML)
	if err != nil {
		return Catalog{}, fmt.Errorf("default catalog: %w", err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Catalog{}, fmt.Errorf("unmarshal catalog: %w", err)
	}
	c := New(f.Tools)
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Load reads and parses the catalog at path.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Marshal encodes c in the same YAML layout Parse accepts.
func Marshal(c Catalog) ([]byte, error) {
	data, err := yaml.Marshal(file{Tools: c.tools})
	if err != nil {
		return nil, fmt.Errorf("marshal catalog: %w", err)
	}
	return data, nil
}

// Tools returns a copy of the records in catalog order.
func (c Catalog) Tools() []Tool {
	cp := make([]Tool, len(c.tools))
	copy(cp, c.tools)
	return cp
}

// Len returns the number of records.
func (c Catalog) Len() int {
	return len(c.tools)
}

// Categories returns each distinct category once, in first-seen order.
func (c Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range c.tools {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out
}

// ByCategory returns the tools in category, in catalog order.
func (c Catalog) ByCategory(category string) []Tool {
	var out []Tool
	for _, t := range c.tools {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Collision is a slug shared by more than one tool. Pages for such tools
// overwrite each other; the last one in catalog order wins.
type Collision struct {
	Slug  string
	Names []string
}

// SlugCollisions lists slugs derived from more than one record, in the order
// the slug first appears. Duplicate names count as collisions.
func (c Catalog) SlugCollisions() []Collision {
	names := make(map[string][]string)
	var order []string
	for _, t := range c.tools {
		s := t.Slug()
		if _, ok := names[s]; !ok {
			order = append(order, s)
		}
		names[s] = append(names[s], t.Name)
	}
	var out []Collision
	for _, s := range order {
		if len(names[s]) > 1 {
			out = append(out, Collision{Slug: s, Names: names[s]})
		}
	}
	return out
}
