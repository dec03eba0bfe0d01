package detector

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"sort"

	"FridgeMood/internal/entity"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

const maxDetections = 300

// anchorCount is the number of candidate boxes a YOLOv8 head emits for a
// square input of the given size (strides 8, 16 and 32).
func anchorCount(size int) int {
	total := 0
	for _, stride := range []int{8, 16, 32} {
		cells := size / stride
		total += cells * cells
	}
	return total
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// toTensor stretches img to size x size and lays it out as normalised CHW RGB.
func toTensor(img image.Image, size int) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Bilinear)
	bounds := resized.Bounds()

	stride := size * size
	input := make([]float32, 3*stride)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := y*size + x
			input[idx] = float32(r>>8) / 255.0
			input[stride+idx] = float32(g>>8) / 255.0
			input[2*stride+idx] = float32(b>>8) / 255.0
		}
	}

	return input
}

type decodeParams struct {
	numAnchors int
	scaleX     float64
	scaleY     float64
	confidence float64
	iou        float64
}

// decodeOutput reads a [1, 4+C, N] YOLOv8 head: per anchor cx, cy, w, h
// followed by C class scores. Boxes are scaled back to source pixels.
func decodeOutput(output []float32, meta ModelMetadata, p decodeParams) ([]entity.Detection, error) {
	n := p.numAnchors
	if n <= 0 || len(output)%n != 0 || len(output)/n <= 4 {
		return nil, fmt.Errorf("unexpected output size %d for %d anchors", len(output), n)
	}
	numClasses := len(output)/n - 4

	candidates := make([]entity.Detection, 0, 64)
	for i := 0; i < n; i++ {
		classID, score := -1, float32(0)
		for c := 0; c < numClasses; c++ {
			if v := output[(4+c)*n+i]; v > score {
				score = v
				classID = c
			}
		}
		if classID < 0 || float64(score) < p.confidence {
			continue
		}

		cx := float64(output[i])
		cy := float64(output[n+i])
		w := float64(output[2*n+i])
		h := float64(output[3*n+i])

		candidates = append(candidates, entity.Detection{
			ClassID:    classID,
			Label:      meta.label(classID),
			Confidence: float64(score),
			Box: entity.BoundingBox{
				X1: (cx - w/2) * p.scaleX,
				Y1: (cy - h/2) * p.scaleY,
				X2: (cx + w/2) * p.scaleX,
				Y2: (cy + h/2) * p.scaleY,
			},
		})
	}

	return nonMaxSuppression(candidates, p.iou), nil
}

// nonMaxSuppression keeps the highest scoring box of every overlapping
// same-class cluster, best first.
func nonMaxSuppression(dets []entity.Detection, threshold float64) []entity.Detection {
	sort.SliceStable(dets, func(i, j int) bool {
		return dets[i].Confidence > dets[j].Confidence
	})

	kept := make([]entity.Detection, 0, len(dets))
	for _, d := range dets {
		suppressed := false
		for _, k := range kept {
			if k.ClassID == d.ClassID && iou(k.Box, d.Box) > threshold {
				suppressed = true
				break
			}
		}
		if suppressed {
			continue
		}
		kept = append(kept, d)
		if len(kept) == maxDetections {
			break
		}
	}

	return kept
}

func iou(a, b entity.BoundingBox) float64 {
	inter := entity.BoundingBox{
		X1: math.Max(a.X1, b.X1),
		Y1: math.Max(a.Y1, b.Y1),
		X2: math.Min(a.X2, b.X2),
		Y2: math.Min(a.Y2, b.Y2),
	}.Area()

	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
