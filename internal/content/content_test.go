package content

import (
	"strings"
	"testing"
)

const validPack = `{
	"name": "basics",
	"gept_level": "elementary",
	"pairs": [
		{
			"id": "p1",
			"left":  {"id": "l1", "kind": "text", "content": "sun"},
			"right": {"id": "r1", "kind": "text", "content": "soleil"}
		},
		{
			"id": "p2",
			"left":  {"id": "l2", "kind": "text", "content": "moon", "display_text": "the moon"},
			"right": {"id": "r2", "kind": "text", "content": "lune"}
		}
	]
}`

func TestLoadValidPack(t *testing.T) {
	s, err := Load([]byte(validPack))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	pack := s.Pack()
	if pack.Name != "basics" {
		t.Errorf("Name = %q, want basics", pack.Name)
	}
	if pack.GEPTLevel != GEPTElementary {
		t.Errorf("GEPTLevel = %q, want elementary", pack.GEPTLevel)
	}

	pairs, err := s.Pairs(0)
	if err != nil {
		t.Fatalf("Pairs: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	if pairs[0].Left.Content != "sun" || pairs[0].Right.Content != "soleil" {
		t.Errorf("pair 1 = %q/%q", pairs[0].Left.Content, pairs[0].Right.Content)
	}
	if pairs[1].Left.DisplayText != "the moon" {
		t.Errorf("DisplayText = %q, want \"the moon\"", pairs[1].Left.DisplayText)
	}
}

func TestLoadRejectsMalformedPacks(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `{`},
		{"missing name", `{"pairs": [{"id": "p1",
			"left": {"id": "l1", "kind": "text", "content": "a"},
			"right": {"id": "r1", "kind": "text", "content": "b"}}]}`},
		{"empty pairs", `{"name": "x", "pairs": []}`},
		{"item missing kind", `{"name": "x", "pairs": [{"id": "p1",
			"left": {"id": "l1", "content": "a"},
			"right": {"id": "r1", "kind": "text", "content": "b"}}]}`},
		{"unknown kind", `{"name": "x", "pairs": [{"id": "p1",
			"left": {"id": "l1", "kind": "video", "content": "a"},
			"right": {"id": "r1", "kind": "text", "content": "b"}}]}`},
		{"unknown level", `{"name": "x", "gept_level": "expert", "pairs": [{"id": "p1",
			"left": {"id": "l1", "kind": "text", "content": "a"},
			"right": {"id": "r1", "kind": "text", "content": "b"}}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load([]byte(tc.raw)); err == nil {
				t.Error("Load accepted a malformed pack")
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("testdata/does-not-exist.json")
	if err == nil {
		t.Fatal("LoadFile succeeded on a missing file")
	}
	if !strings.Contains(err.Error(), "read content pack") {
		t.Errorf("err = %v, want read content pack wrap", err)
	}
}

func TestPairsLimit(t *testing.T) {
	s, err := Load([]byte(validPack))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	pairs, err := s.Pairs(1)
	if err != nil {
		t.Fatalf("Pairs: %v", err)
	}
	if len(pairs) != 1 {
		t.Errorf("got %d pairs with limit 1", len(pairs))
	}

	// A limit beyond the pack size returns everything.
	pairs, err = s.Pairs(10)
	if err != nil {
		t.Fatalf("Pairs: %v", err)
	}
	if len(pairs) != 2 {
		t.Errorf("got %d pairs with limit 10, want 2", len(pairs))
	}
}

func TestStaticSupplier(t *testing.T) {
	s := NewStaticSupplier([]Pair{
		{ID: "p1", Left: Item{ID: "l1", Kind: KindText, Content: "a"}, Right: Item{ID: "r1", Kind: KindText, Content: "b"}},
	})
	pairs, err := s.Pairs(0)
	if err != nil {
		t.Fatalf("Pairs: %v", err)
	}
	if len(pairs) != 1 || pairs[0].ID != "p1" {
		t.Errorf("pairs = %+v", pairs)
	}

	// Mutating the returned slice must not leak into the supplier.
	pairs[0].ID = "changed"
	again, _ := s.Pairs(0)
	if again[0].ID != "p1" {
		t.Error("Pairs returned an aliased slice")
	}
}
