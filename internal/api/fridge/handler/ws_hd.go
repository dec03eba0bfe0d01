package fridgeHandler

import (
	"FridgeMood/pkg/detector"
	"FridgeMood/pkg/response"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

const maxReadTimeout = 60 * time.Second

func wsUpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// handleWebSocket answers every binary frame with the same body POST /upload
// returns, or {"error": ...}. The connection survives per-frame failures.
func (h *FridgeHandler) handleWebSocket(c *websocket.Conn) {
	h.log.Info("Fridge WebSocket client connected")
	defer h.log.Info("Fridge WebSocket client disconnected")

	// Frames share the upload size cap; larger ones close with 1009.
	c.SetReadLimit(h.maxFrameSize)

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Errorf("Fridge WebSocket error: %v", err)
			}
			break
		}

		if messageType != websocket.BinaryMessage {
			h.log.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		result, err := h.fridgeService.AnalyzeFrame(ctx, message)
		cancel()

		var reply interface{} = result
		if err != nil {
			h.log.Errorf("Error processing fridge frame: %v", err)
			reply = fiber.Map{"error": frameError(err)}
		}

		if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
			h.log.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(reply); err != nil {
			h.log.Errorf("Error writing JSON response: %v", err)
			break
		}
	}
}

func frameError(err error) string {
	var respErr *response.Error
	switch {
	case errors.As(err, &respErr):
		return respErr.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "Request Timeout"
	case errors.Is(err, detector.ErrDetectionFailed):
		return "Detection failed"
	}
	return "An unexpected error occurred"
}
