package schema

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

type schemaFile struct {
	Resource []struct {
		Namespace  string `toml:"namespace"`
		Type       string `toml:"type"`
		APIVersion string `toml:"apiVersion"`
		Property   []struct {
			Name     string `toml:"name"`
			Type     string `toml:"type"`
			Required bool   `toml:"required"`
			ReadOnly bool   `toml:"readOnly"`
		} `toml:"property"`
	} `toml:"resource"`
}

// LoadFile parses one TOML schema file.
func LoadFile(path string) ([]ResourceSchema, error) {
	var cfg schemaFile
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	out := make([]ResourceSchema, 0, len(cfg.Resource))
	for _, r := range cfg.Resource {
		if r.Namespace == "" || r.Type == "" || r.APIVersion == "" {
			return nil, fmt.Errorf("%s: resource entry needs namespace, type and apiVersion", path)
		}
		s := ResourceSchema{
			Namespace:  r.Namespace,
			Type:       r.Type,
			APIVersion: r.APIVersion,
		}
		for _, p := range r.Property {
			if p.Name == "" || p.Type == "" {
				return nil, fmt.Errorf("%s: property of %s needs name and type", path, s.ID())
			}
			s.Properties = append(s.Properties, Property{
				Name:     p.Name,
				Type:     p.Type,
				Required: p.Required,
				ReadOnly: p.ReadOnly,
			})
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadDir reads every *.toml file under dir (recursively, in sorted order)
// and builds a registry from the union of their schemas.
func LoadDir(dir string) (*Registry, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".toml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var schemas []ResourceSchema
	for _, path := range files {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, loaded...)
	}
	return NewRegistry(schemas)
}
