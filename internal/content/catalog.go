// Package content holds the read-only site catalogs: events, blog posts,
// membership packages and the eligibility quiz.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"hub47-site/internal/backend"
	"hub47-site/internal/eligibility"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Post struct {
	Slug     string `json:"slug" yaml:"slug"`
	Title    string `json:"title" yaml:"title"`
	Excerpt  string `json:"excerpt" yaml:"excerpt"`
	ReadTime string `json:"readTime" yaml:"readTime"`
	Date     string `json:"date" yaml:"date"`
	Author   string `json:"author" yaml:"author"`
	Category string `json:"category" yaml:"category"`
	Featured bool   `json:"featured" yaml:"featured"`
}

type Package struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Price      string   `json:"price" yaml:"price"`
	PriceValue int      `json:"priceValue" yaml:"priceValue"`
	Members    string   `json:"members" yaml:"members"`
	Popular    bool     `json:"popular" yaml:"popular"`
	Benefits   []string `json:"benefits" yaml:"benefits"`
}

type Catalog struct {
	Events   []backend.EventDetail  `json:"events" yaml:"events"`
	Posts    []Post                 `json:"posts" yaml:"posts"`
	Packages []Package              `json:"packages" yaml:"packages"`
	Quiz     []eligibility.Question `json:"quiz" yaml:"quiz"`

	scorer *eligibility.Scorer
}

// Parse decodes a YAML catalog. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

func (c *Catalog) validate() error {
	var errs []error

	events := make(map[int]bool, len(c.Events))
	for _, e := range c.Events {
		if e.ID <= 0 || events[e.ID] {
			errs = append(errs, fmt.Errorf("event id %d is not positive or duplicated", e.ID))
		}
		events[e.ID] = true
	}

	slugs := make(map[string]bool, len(c.Posts))
	for _, p := range c.Posts {
		if p.Slug == "" || slugs[p.Slug] {
			errs = append(errs, fmt.Errorf("post slug %q is empty or duplicated", p.Slug))
		}
		slugs[p.Slug] = true
	}

	packages := make(map[string]bool, len(c.Packages))
	for _, p := range c.Packages {
		if p.ID == "" || packages[p.ID] {
			errs = append(errs, fmt.Errorf("package id %q is empty or duplicated", p.ID))
		}
		packages[p.ID] = true
	}

	scorer, err := eligibility.NewScorer(c.Quiz, nil)
	if err != nil {
		errs = append(errs, err)
	}
	c.scorer = scorer

	return errors.Join(errs...)
}

// Scorer rates answers against this catalog's quiz.
func (c *Catalog) Scorer() *eligibility.Scorer { return c.scorer }

func (c *Catalog) Event(id int) (backend.EventDetail, bool) {
	for _, e := range c.Events {
		if e.ID == id {
			return e, true
		}
	}
	return backend.EventDetail{}, false
}

func (c *Catalog) Post(slug string) (Post, bool) {
	for _, p := range c.Posts {
		if p.Slug == slug {
			return p, true
		}
	}
	return Post{}, false
}

// PostsIn filters by category; "" or "All" returns every post.
func (c *Catalog) PostsIn(category string) []Post {
	if category == "" || strings.EqualFold(category, "all") {
		return append([]Post(nil), c.Posts...)
	}
	var out []Post
	for _, p := range c.Posts {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// FeaturedPost is the first post flagged featured.
func (c *Catalog) FeaturedPost() (Post, bool) {
	for _, p := range c.Posts {
		if p.Featured {
			return p, true
		}
	}
	return Post{}, false
}

func (c *Catalog) Package(id string) (Package, bool) {
	for _, p := range c.Packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}
