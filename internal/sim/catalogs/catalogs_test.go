package catalogs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_CoreBlocks(t *testing.T) {
	r := Default()

	cases := []struct {
		id    byte
		name  string
		solid bool
	}{
		{Air, "air", false},
		{Bedrock, "bedrock", true},
		{Stone, "stone", true},
		{Water, "water", false},
		{Grass, "grass", true},
		{Tallgrass, "tallgrass", false},
		{DiamondOre, "diamond_ore", true},
	}
	for _, c := range cases {
		d, ok := r.Lookup(c.id)
		if !ok {
			t.Fatalf("block %d missing from default palette", c.id)
		}
		if d.Name != c.name {
			t.Fatalf("block %d named %q, want %q", c.id, d.Name, c.name)
		}
		if d.Solid != c.solid {
			t.Fatalf("block %q solid=%v, want %v", c.name, d.Solid, c.solid)
		}
	}

	if r.Solid(Air) {
		t.Fatal("air is solid")
	}
	if !r.Solid(Stone) {
		t.Fatal("stone is not solid")
	}
	if r.Solid(200) {
		t.Fatal("unknown id reported solid")
	}
}

func TestDigest_Stable(t *testing.T) {
	a := Default()
	b := Default()
	if a.Digest() == "" {
		t.Fatal("empty digest")
	}
	if a.Digest() != b.Digest() {
		t.Fatal("digest not stable across constructions")
	}
}

func TestLoad_OverlayMergesAndExtends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.yaml")
	body := `blocks:
  - id: 2
    name: basalt
    solid: true
    hardness: 9
  - id: 120
    name: crystal
    solid: true
    hardness: 4
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	d, ok := r.Lookup(Stone)
	if !ok || d.Name != "basalt" || d.Hardness != 9 {
		t.Fatalf("overlay did not replace stone: %+v ok=%v", d, ok)
	}
	d, ok = r.Lookup(120)
	if !ok || d.Name != "crystal" {
		t.Fatalf("overlay did not extend palette: %+v ok=%v", d, ok)
	}
	if r.Count() != Default().Count()+1 {
		t.Fatalf("palette size %d, want %d", r.Count(), Default().Count()+1)
	}
	if r.Digest() == Default().Digest() {
		t.Fatal("overlay palette shares the default digest")
	}
}

func TestLoad_RejectsNamelessBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.yaml")
	if err := os.WriteFile(path, []byte("blocks:\n  - id: 7\n    solid: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("nameless block accepted")
	}
}
