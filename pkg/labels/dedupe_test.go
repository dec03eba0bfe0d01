package labels

import (
	"reflect"
	"strings"
	"testing"

	"FridgeMood/internal/entity"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"no duplicates", []string{"apple", "banana"}, []string{"apple", "banana"}},
		{"exact duplicates", []string{"apple", "apple", "banana", "apple"}, []string{"apple", "banana"}},
		{"first casing wins", []string{"Apple", "apple", "APPLE"}, []string{"Apple"}},
		{"order preserved", []string{"bottle", "Apple", "cup", "apple", "Bottle"}, []string{"bottle", "Apple", "cup"}},
		{"unicode folding", []string{"Straße", "STRASSE"}, []string{"Straße"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dedupe(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dedupe(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDedupeNoCaseInsensitiveRepeats(t *testing.T) {
	in := []string{"Milk", "egg", "EGG", "milk", "Cake", "cake", "Egg", "broccoli"}
	got := Dedupe(in)

	seen := map[string]bool{}
	for _, label := range got {
		key := strings.ToLower(label)
		if seen[key] {
			t.Fatalf("label %q repeated in %v", label, got)
		}
		seen[key] = true
	}

	if len(got) != 4 {
		t.Errorf("expected 4 unique labels, got %d (%v)", len(got), got)
	}
}

func TestDedupeDoesNotMutateInput(t *testing.T) {
	in := []string{"a", "A", "b"}
	Dedupe(in)

	if !reflect.DeepEqual(in, []string{"a", "A", "b"}) {
		t.Errorf("input mutated: %v", in)
	}
}

func TestFromDetections(t *testing.T) {
	dets := []entity.Detection{
		{Label: "apple", Confidence: 0.9},
		{Label: "apple", Confidence: 0.8},
		{Label: "bottle", Confidence: 0.5},
	}

	got := FromDetections(dets)
	want := []string{"apple", "apple", "bottle"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromDetections() = %v, want %v", got, want)
	}
}
