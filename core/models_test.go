package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "entity tuple",
			content: "(docs,technology,kubernetes)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestEntity_Tuple(t *testing.T) {
	tests := []struct {
		name   string
		entity Entity
		want   string
	}{
		{
			name: "basic entity",
			entity: Entity{
				Namespace:      "docs",
				Type:           "technology",
				NormalizedName: "kubernetes",
			},
			want: "(docs,technology,kubernetes)",
		},
		{
			name: "normalized name with spaces",
			entity: Entity{
				Namespace:      "docs",
				Type:           "organization",
				NormalizedName: "cloud native computing foundation",
			},
			want: "(docs,organization,cloud native computing foundation)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entity.Tuple(); got != tt.want {
				t.Errorf("Tuple() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	fp1 := Fingerprint("Title", "body text", []string{"a.md", "b.md"})
	fp2 := Fingerprint("Title", "body text", []string{"a.md", "b.md"})

	if fp1 != fp2 {
		t.Errorf("Fingerprint() not deterministic: %q vs %q", fp1, fp2)
	}
	if fp1 == "" {
		t.Error("Fingerprint() returned empty string")
	}
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	base := Fingerprint("Title", "body text", []string{"a.md"})

	tests := []struct {
		name  string
		title string
		text  string
		links []string
	}{
		{name: "changed title", title: "Other Title", text: "body text", links: []string{"a.md"}},
		{name: "changed text", title: "Title", text: "other body", links: []string{"a.md"}},
		{name: "changed links", title: "Title", text: "body text", links: []string{"b.md"}},
		{name: "dropped links", title: "Title", text: "body text", links: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fingerprint(tt.title, tt.text, tt.links); got == base {
				t.Errorf("Fingerprint() unchanged for %s", tt.name)
			}
		})
	}
}

func TestFingerprint_NormalizesWhitespace(t *testing.T) {
	fp1 := Fingerprint("Title", "body", nil)
	fp2 := Fingerprint("  Title  ", "\nbody\n", nil)

	if fp1 != fp2 {
		t.Errorf("Fingerprint() should ignore surrounding whitespace: %q vs %q", fp1, fp2)
	}
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})

	if len(v) != 2 {
		t.Fatalf("NormalizeVector() returned %d elements, want 2", len(v))
	}
	if diff := v[0] - 0.6; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("NormalizeVector()[0] = %f, want 0.6", v[0])
	}
	if diff := v[1] - 0.8; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("NormalizeVector()[1] = %f, want 0.8", v[1])
	}
}

func TestNormalizeVector_ZeroVector(t *testing.T) {
	v := NormalizeVector([]float32{0, 0, 0})
	for i, val := range v {
		if val != 0 {
			t.Errorf("NormalizeVector()[%d] = %f, want 0", i, val)
		}
	}
}

func TestDotProduct(t *testing.T) {
	got := DotProduct([]float32{1, 2, 3}, []float32{4, 5, 6})
	if got != 32 {
		t.Errorf("DotProduct() = %f, want 32", got)
	}
}
