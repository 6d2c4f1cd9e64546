package engine

import (
	"reflect"
	"testing"
)

func TestHarvestAppendsInEncounterOrder(t *testing.T) {
	cache := newSubresourceCache()

	cache.Harvest("/devices", []byte(`[{"id": "alpha"}, {"id": "beta"}]`))
	cache.Harvest("/devices", []byte(`[{"id": "gamma"}, {"id": "alpha"}]`))

	want := []string{"alpha", "beta", "gamma", "alpha"}
	if got := cache.IDs("/devices"); !reflect.DeepEqual(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}

	// The first identifier never changes once harvested.
	if id, ok := cache.First("/devices"); !ok || id != "alpha" {
		t.Fatalf("First() = %q, %v, want alpha, true", id, ok)
	}
}

func TestHarvestIdentifierShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "object ids",
			body: `[{"id": "alpha"}, {"id": "beta"}]`,
			want: []string{"alpha", "beta"},
		},
		{
			name: "numeric ids render in minimal decimal form",
			body: `[{"id": 7}, {"id": 2.5}]`,
			want: []string{"7", "2.5"},
		},
		{
			name: "string entries need a trailing separator",
			body: `["alpha/", "beta"]`,
			want: []string{"alpha"},
		},
		{
			name: "unusable shapes are dropped",
			body: `[{"id": true}, {"name": "alpha"}, 42, null, ["nested"], {"id": "kept"}]`,
			want: []string{"kept"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newSubresourceCache()
			cache.Harvest("/devices", []byte(tt.body))
			if got := cache.IDs("/devices"); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("IDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHarvestIgnoresNonListBodies(t *testing.T) {
	bodies := []string{
		`{"id": "alpha"}`,
		`"alpha/"`,
		`42`,
		`not json at all`,
		``,
	}

	for _, body := range bodies {
		cache := newSubresourceCache()
		cache.Harvest("/devices", []byte(body))
		if len(cache.entities) != 0 {
			t.Fatalf("Harvest(%q) created entries: %v", body, cache.entities)
		}
	}
}

func TestHarvestEmptyExtractionCreatesNoEntry(t *testing.T) {
	cache := newSubresourceCache()

	cache.Harvest("/devices", []byte(`["alpha", "beta"]`))

	if _, ok := cache.entities["/devices"]; ok {
		t.Fatal("expected no cache entry when nothing was extracted")
	}
	if _, ok := cache.First("/devices"); ok {
		t.Fatal("First() reported an identifier for an empty path")
	}
}

func TestFirstOnUnknownPath(t *testing.T) {
	cache := newSubresourceCache()

	if id, ok := cache.First("/devices"); ok || id != "" {
		t.Fatalf("First() = %q, %v, want empty, false", id, ok)
	}
}

func TestIDsReturnsACopy(t *testing.T) {
	cache := newSubresourceCache()
	cache.Harvest("/devices", []byte(`[{"id": "alpha"}]`))

	ids := cache.IDs("/devices")
	ids[0] = "mutated"

	if id, _ := cache.First("/devices"); id != "alpha" {
		t.Fatalf("cache mutated through IDs() copy: %q", id)
	}
}
