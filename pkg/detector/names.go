package detector

import (
	"encoding/json"
	"fmt"
	"os"
)

// cocoNames is the class table of the stock YOLOv8 COCO checkpoints.
var cocoNames = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat",
	"dog", "horse", "sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack",
	"umbrella", "handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball",
	"kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple",
	"sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair",
	"couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink",
	"refrigerator", "book", "clock", "vase", "scissors", "teddy bear", "hair drier",
	"toothbrush",
}

// ModelMetadata describes an exported YOLO model.
type ModelMetadata struct {
	Names      []string `json:"names"`
	ImageSize  int      `json:"image_size"`
	InputName  string   `json:"input_name"`
	OutputName string   `json:"output_name"`
}

// LoadMetadata reads path, filling anything missing with the COCO
// YOLOv8 defaults. An empty path returns the defaults.
func LoadMetadata(path string) (ModelMetadata, error) {
	meta := ModelMetadata{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return meta, fmt.Errorf("failed to read metadata: %w", err)
		}
		if err := json.Unmarshal(raw, &meta); err != nil {
			return meta, fmt.Errorf("failed to parse metadata: %w", err)
		}
	}

	if len(meta.Names) == 0 {
		meta.Names = append([]string(nil), cocoNames...)
	}
	if meta.ImageSize <= 0 {
		meta.ImageSize = 640
	}
	if meta.InputName == "" {
		meta.InputName = "images"
	}
	if meta.OutputName == "" {
		meta.OutputName = "output0"
	}

	return meta, nil
}

// Lookup returns the name of classID, or false when the index is outside
// the table.
func (m ModelMetadata) Lookup(classID int) (string, bool) {
	if classID < 0 || classID >= len(m.Names) {
		return "", false
	}
	return m.Names[classID], true
}

func (m ModelMetadata) label(classID int) string {
	if classID < 0 || classID >= len(m.Names) {
		return fmt.Sprintf("class_%d", classID)
	}
	return m.Names[classID]
}
