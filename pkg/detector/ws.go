package detector

import (
	"context"
	"errors"
	"fmt"
	"os"

	"FridgeMood/internal/entity"
	websocketPkg "FridgeMood/pkg/websocket"

	"github.com/sirupsen/logrus"
)

// WebSocketDetector streams images to an inference service over a
// long-lived WebSocket connection.
type WebSocketDetector struct {
	client websocketPkg.IWebsocket
	meta   ModelMetadata
	log    *logrus.Logger
}

func NewWebSocketDetector(client websocketPkg.IWebsocket, meta ModelMetadata, log *logrus.Logger) *WebSocketDetector {
	return &WebSocketDetector{client: client, meta: meta, log: log}
}

func (d *WebSocketDetector) Name() string {
	return BackendWebSocket
}

func (d *WebSocketDetector) Detect(ctx context.Context, imagePath string) ([]entity.Detection, error) {
	frame, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, failed("read image", err)
	}

	result, err := d.client.ProcessFrame(ctx, frame)
	if err != nil {
		return nil, failed("inference", err)
	}
	if result.Error != "" {
		return nil, failed("inference", errors.New(result.Error))
	}

	return result.ToDetections(d.meta.Lookup), nil
}

func (d *WebSocketDetector) Close() error {
	d.client.CloseConnections()
	return nil
}

// CheckHealth reports whether the inference socket is up, dialling it
// again when it is not.
func (d *WebSocketDetector) CheckHealth(ctx context.Context) error {
	if d.client.IsConnected() {
		return nil
	}
	if err := d.client.Reconnect(); err != nil {
		return fmt.Errorf("%w: %w", websocketPkg.ErrNotConnected, err)
	}
	return nil
}
