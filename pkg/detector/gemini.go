package detector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"FridgeMood/internal/entity"
	"FridgeMood/pkg/gemini"

	"github.com/sirupsen/logrus"
)

const geminiPrompt = `
List every food or drink item you can see in this photo of a refrigerator.
Return one entry per visible instance, so two apples give two "apple" entries.
Use short lowercase English names such as "apple", "milk carton", "broccoli".
Answer with JSON only, in this format:
{
	"items": ["apple", "apple", "milk carton"]
}
If the fridge is empty, answer {"items": []}.
`

type geminiItems struct {
	Items []string `json:"items"`
}

// GeminiDetector asks a Gemini vision model for the item list. It returns
// no boxes and a confidence of 1 for every item.
type GeminiDetector struct {
	client gemini.IGemini
	log    *logrus.Logger
}

func NewGeminiDetector(client gemini.IGemini, log *logrus.Logger) *GeminiDetector {
	return &GeminiDetector{client: client, log: log}
}

func (d *GeminiDetector) Name() string {
	return BackendGemini
}

func (d *GeminiDetector) Detect(ctx context.Context, imagePath string) ([]entity.Detection, error) {
	imgData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, failed("read image", err)
	}

	mimeType := http.DetectContentType(imgData)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, failed("sniff image", errors.New("unsupported image format "+mimeType))
	}

	answer, err := d.client.AnalyzeImage(ctx, imgData, mimeType, geminiPrompt)
	if err != nil {
		return nil, failed("analyze image", err)
	}

	items, err := parseGeminiItems(answer)
	if err != nil {
		return nil, failed("parse answer", err)
	}

	detections := make([]entity.Detection, 0, len(items))
	for _, item := range items {
		detections = append(detections, entity.Detection{
			ClassID:    -1,
			Label:      item,
			Confidence: 1,
		})
	}

	return detections, nil
}

func (d *GeminiDetector) Close() error {
	return d.client.Close()
}

func parseGeminiItems(response string) ([]string, error) {
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")

	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return nil, errors.New("cannot find valid JSON in response")
	}

	var parsed geminiItems
	if err := json.Unmarshal([]byte(response[jsonStart:jsonEnd+1]), &parsed); err != nil {
		return nil, err
	}

	items := make([]string, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items, nil
}
