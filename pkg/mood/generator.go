// Package mood assigns whimsical sentences to fridge items.
package mood

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"FridgeMood/internal/entity"
)

// EmptyFridgeName names the single entry produced when nothing was detected.
const EmptyFridgeName = "Fridge"

// Source picks an index in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type IGenerator interface {
	Generate(labels []string) ([]entity.MoodEntry, string)
}

type Generator struct {
	mu  sync.Mutex
	src Source
}

// NewGenerator uses src for every draw. src need not be safe for
// concurrent use.
func NewGenerator(src Source) *Generator {
	return &Generator{src: src}
}

// NewRandomGenerator seeds a ChaCha8 source from crypto/rand.
func NewRandomGenerator() *Generator {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return NewGenerator(rand.New(rand.NewChaCha8(seed)))
}

// Generate draws one sentence per label, with replacement, and one final
// mood. Empty input yields a single EmptyFridgeName entry.
func (g *Generator) Generate(labels []string) ([]entity.MoodEntry, string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(labels) == 0 {
		entries := []entity.MoodEntry{{
			Name: EmptyFridgeName,
			Mood: g.pick(emptyMoods),
		}}
		return entries, g.pick(finalMoods)
	}

	entries := make([]entity.MoodEntry, 0, len(labels))
	for _, label := range labels {
		entries = append(entries, entity.MoodEntry{
			Name: label,
			Mood: g.pick(itemMoods),
		})
	}

	return entries, g.pick(finalMoods)
}

func (g *Generator) pick(pool []string) string {
	return pool[g.src.IntN(len(pool))]
}

// Render formats entries as the plain text block older clients display.
func Render(entries []entity.MoodEntry, finalMood string) string {
	lines := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s – \"%s\"", e.Name, e.Mood))
	}
	lines = append(lines, "Final Mood: "+finalMood)
	return strings.Join(lines, "\n")
}
