package schema

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryLookup(t *testing.T) {
	reg, err := NewRegistry([]ResourceSchema{
		{
			Namespace:  "core",
			Type:       "storage",
			APIVersion: "v1",
			Properties: []Property{
				{Name: "name", Type: "string", Required: true},
				{Name: "tier", Type: "'hot' | 'cold'"},
			},
		},
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	s, ok := reg.Lookup("core", "storage", "v1")
	if !ok {
		t.Fatalf("expected schema to resolve")
	}
	if s.ID() != "core/storage@v1" {
		t.Fatalf("id = %q", s.ID())
	}
	if _, ok := reg.Lookup("core", "storage", "v2"); ok {
		t.Fatalf("unknown version must not resolve")
	}
	if _, ok := reg.Lookup("net", "storage", "v1"); ok {
		t.Fatalf("unknown namespace must not resolve")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry([]ResourceSchema{
		{Namespace: "core", Type: "storage", APIVersion: "v1"},
		{Namespace: "core", Type: "storage", APIVersion: "v1"},
	})
	if err == nil {
		t.Fatalf("expected duplicate schema error")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	content := `
[[resource]]
namespace = "core"
type = "storage"
apiVersion = "v1"

  [[resource.property]]
  name = "name"
  type = "string"
  required = true

  [[resource.property]]
  name = "endpoint"
  type = "string"
  readOnly = true

[[resource]]
namespace = "net"
type = "vnet"
apiVersion = "v2"

  [[resource.property]]
  name = "cidr"
  type = "string"
  required = true
`
	if err := os.WriteFile(filepath.Join(dir, "core.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	reg, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	s, ok := reg.Lookup("core", "storage", "v1")
	if !ok || len(s.Properties) != 2 {
		t.Fatalf("schema = %+v (%v)", s, ok)
	}
	if !s.Properties[0].Required || s.Properties[1].ReadOnly != true {
		t.Fatalf("property flags lost: %+v", s.Properties)
	}
	all := reg.All()
	if len(all) != 2 || all[0].ID() != "core/storage@v1" || all[1].ID() != "net/vnet@v2" {
		t.Fatalf("all = %v", all)
	}
}

func TestLoadFileValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("[[resource]]\ntype = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected validation error for missing namespace")
	}
}
