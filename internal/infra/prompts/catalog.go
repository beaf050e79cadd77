// Package prompts holds the model instructions used for question and
// image generation. The texts live in an embedded YAML catalog so they
// can be edited without touching adapter code.
package prompts

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"scenario-quiz/internal/domain/model"
)

//go:embed catalog
var CatalogFS embed.FS

const catalogFile = "prompts.yaml"

type catalogDoc struct {
	UserPrompt    string            `yaml:"user_prompt"`
	ImagePrompt   string            `yaml:"image_prompt"`
	ObjectWrapper string            `yaml:"object_wrapper"`
	Default       string            `yaml:"default"`
	Subjects      map[string]string `yaml:"subjects"`
}

type Catalog struct {
	doc catalogDoc
}

// New reads catalog/prompts.yaml from fsys. Pass CatalogFS in production.
func New(fsys fs.FS) (*Catalog, error) {
	filePath := filepath.Join("catalog", catalogFile)
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt catalog %s: %w", filePath, err)
	}
	return newCatalogFromBytes(data)
}

// MustDefault loads the embedded catalog and panics if it is broken.
func MustDefault() *Catalog {
	c, err := New(CatalogFS)
	if err != nil {
		panic(err)
	}
	return c
}

func newCatalogFromBytes(data []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}
	if strings.TrimSpace(doc.Default) == "" {
		return nil, fmt.Errorf("prompt catalog: default system instruction is empty")
	}
	if strings.Count(doc.UserPrompt, "%") != 4 {
		return nil, fmt.Errorf("prompt catalog: user_prompt must take count, subject, difficulty and topic")
	}
	if strings.Count(doc.ImagePrompt, "%") != 1 {
		return nil, fmt.Errorf("prompt catalog: image_prompt must take the scenario")
	}
	return &Catalog{doc: doc}, nil
}

// System returns the system instruction for subject, falling back to the
// default instruction for subjects without a dedicated entry.
func (c *Catalog) System(subject model.Subject) string {
	if s, ok := c.doc.Subjects[string(subject)]; ok && strings.TrimSpace(s) != "" {
		return s
	}
	return c.doc.Default
}

// UserPrompt renders the per-request prompt.
func (c *Catalog) UserPrompt(req model.GenerationRequest) string {
	return fmt.Sprintf(c.doc.UserPrompt, model.QuestionsPerBatch, req.Subject, req.Difficulty, req.Topic)
}

// ObjectWrapper is appended to the system instruction for providers whose
// JSON mode rejects a top-level array.
func (c *Catalog) ObjectWrapper() string {
	return c.doc.ObjectWrapper
}

func (c *Catalog) ImagePrompt(scenario string) string {
	return fmt.Sprintf(c.doc.ImagePrompt, scenario)
}
