// Package detector wraps the object detection backends behind one contract:
// given an image on disk, return the objects found in it.
package detector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FridgeMood/internal/entity"
	"FridgeMood/pkg/gemini"
	websocketPkg "FridgeMood/pkg/websocket"

	"github.com/sirupsen/logrus"
)

// ErrDetectionFailed is wrapped by every error a backend returns.
var ErrDetectionFailed = errors.New("detection failed")

const (
	BackendONNX      = "onnx"
	BackendHTTP      = "http"
	BackendWebSocket = "ws"
	BackendGemini    = "gemini"
)

type IDetector interface {
	Detect(ctx context.Context, imagePath string) ([]entity.Detection, error)
	Name() string
	Close() error
}

// HealthChecker is implemented by backends that depend on a remote service.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

type Config struct {
	Backend string

	ModelPath         string
	MetadataPath      string
	SharedLibraryPath string
	PoolSize          int
	Confidence        float64
	IoU               float64

	InferenceURL   string
	InferenceWSURL string
	Timeout        time.Duration

	GeminiAPIKey string
	GeminiModel  string
}

// New builds the backend named by cfg.Backend.
func New(cfg Config, log *logrus.Logger) (IDetector, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendONNX:
		return NewONNXDetector(cfg, log)
	case BackendHTTP:
		meta, err := LoadMetadata(cfg.MetadataPath)
		if err != nil {
			return nil, err
		}
		return NewHTTPDetector(cfg.InferenceURL, cfg.Timeout, meta, log), nil
	case BackendWebSocket:
		meta, err := LoadMetadata(cfg.MetadataPath)
		if err != nil {
			return nil, err
		}
		client := websocketPkg.NewInferenceClient(cfg.InferenceWSURL, log)
		return NewWebSocketDetector(client, meta, log), nil
	case BackendGemini:
		client, err := gemini.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return NewGeminiDetector(client, log), nil
	default:
		return nil, fmt.Errorf("unknown detector backend %q", cfg.Backend)
	}
}

func failed(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDetectionFailed, op, err)
}
