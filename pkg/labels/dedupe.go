// Package labels turns raw detector output into the item names shown to users.
package labels

import (
	"FridgeMood/internal/entity"

	"golang.org/x/text/cases"
)

// FromDetections returns one label per detection, in detector order.
func FromDetections(detections []entity.Detection) []string {
	out := make([]string, 0, len(detections))
	for _, d := range detections {
		out = append(out, d.Label)
	}
	return out
}

// Dedupe drops labels that case-fold to one already seen. The first
// spelling wins and first-seen order is kept.
func Dedupe(labels []string) []string {
	folder := cases.Fold()
	seen := make(map[string]struct{}, len(labels))
	unique := make([]string, 0, len(labels))

	for _, label := range labels {
		key := folder.String(label)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, label)
	}

	return unique
}
