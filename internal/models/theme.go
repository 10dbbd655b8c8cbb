package models

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed themes/penguins.yaml
var penguinsTheme []byte

var (
	ErrUnknownSprite = errors.New("unknown sprite class")
	ErrInvalidTheme  = errors.New("invalid theme")
)

// ThemeDir is where named themes are stored, one directory per theme.
var ThemeDir = "themes"

const themeFile = "theme.yaml"

// Theme is a named table of sprite classes. Class indices are stable for
// the lifetime of the theme and are what Toon.Type refers to.
type Theme struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Classes     []SpriteClass `yaml:"classes"`
}

// DefaultTheme returns the built-in penguin theme.
func DefaultTheme() *Theme {
	t, err := ParseTheme(penguinsTheme)
	if err != nil {
		panic(fmt.Sprintf("models: embedded theme: %v", err))
	}
	return t
}

// ParseTheme decodes and validates a theme.yaml document.
func ParseTheme(data []byte) (*Theme, error) {
	var t Theme
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks that every class has a usable frame grid and colour.
func (t *Theme) Validate() error {
	if len(t.Classes) == 0 {
		return fmt.Errorf("%w: %q has no sprite classes", ErrInvalidTheme, t.Name)
	}
	seen := make(map[string]bool, len(t.Classes))
	for i, c := range t.Classes {
		if c.Name == "" {
			return fmt.Errorf("%w: class %d has no name", ErrInvalidTheme, i)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate class %q", ErrInvalidTheme, c.Name)
		}
		seen[c.Name] = true
		if c.Frames <= 0 || c.Directions <= 0 || c.Width <= 0 || c.Height <= 0 {
			return fmt.Errorf("%w: class %q needs positive frames, directions and size", ErrInvalidTheme, c.Name)
		}
		if c.Color != "" {
			if _, err := colorful.Hex(c.Color); err != nil {
				return fmt.Errorf("%w: class %q: %v", ErrInvalidTheme, c.Name, err)
			}
		}
	}
	return nil
}

// Index returns the class index for name.
func (t *Theme) Index(name string) (int, error) {
	for i, c := range t.Classes {
		if c.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q in theme %q", ErrUnknownSprite, name, t.Name)
}

func (t *Theme) Save(dir string) error {
	path := filepath.Join(dir, t.Name)
	if err := os.MkdirAll(path, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(path, themeFile), data, 0644)
}

// LoadTheme reads dir/name/theme.yaml. The name "penguins" falls back to the
// embedded theme when it is not present on disk.
func LoadTheme(dir, name string) (*Theme, error) {
	data, err := os.ReadFile(filepath.Join(dir, name, themeFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && name == "penguins" {
			return DefaultTheme(), nil
		}
		return nil, err
	}
	t, err := ParseTheme(data)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}
	if t.Name == "" {
		t.Name = name
	}
	return t, nil
}

func ListThemes(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var themes []string
	for _, entry := range entries {
		if entry.IsDir() {
			// theme.yaml marks a valid theme directory
			if _, err := os.Stat(filepath.Join(dir, entry.Name(), themeFile)); err == nil {
				themes = append(themes, entry.Name())
			}
		}
	}
	return themes, nil
}

// FetchTheme downloads src (any go-getter address: local path, git::, http,
// s3::, archives) into dir/name and loads it.
func FetchTheme(ctx context.Context, src, dir, name string) (*Theme, error) {
	pwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	dst := filepath.Join(dir, name)
	if err := os.RemoveAll(dst); err != nil {
		return nil, err
	}

	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeDir,
	}
	if err := client.Get(); err != nil {
		return nil, fmt.Errorf("fetch theme %s from %s: %w", name, src, err)
	}
	return LoadTheme(dir, name)
}
