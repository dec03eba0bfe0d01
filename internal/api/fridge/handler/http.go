package fridgeHandler

import (
	fridgeService "FridgeMood/internal/api/fridge/service"
	"FridgeMood/internal/middleware"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const (
	imageField = "image"
	indexPage  = "index12.html"
)

type FridgeHandler struct {
	log           *logrus.Logger
	middleware    middleware.Middleware
	fridgeService fridgeService.IFridgeService
	staticDir     string
	timeout       time.Duration
	maxFrameSize  int64
}

func New(
	log *logrus.Logger,
	middleware middleware.Middleware,
	fs fridgeService.IFridgeService,
	staticDir string,
	timeout time.Duration,
	maxFrameSize int64,
) *FridgeHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxFrameSize <= 0 {
		maxFrameSize = 16 << 20
	}

	return &FridgeHandler{
		log:           log,
		middleware:    middleware,
		fridgeService: fs,
		staticDir:     staticDir,
		timeout:       timeout,
		maxFrameSize:  maxFrameSize,
	}
}

func (h *FridgeHandler) Start(srv fiber.Router) {
	srv.Get("/", h.Index)
	srv.Get("/"+indexPage, h.Index)
	srv.Get("/health", h.Health)
	srv.Post("/upload", h.middleware.NewRateLimiter, h.Upload)

	srv.Use("/ws", wsUpgradeRequired)
	srv.Get("/ws", websocket.New(h.handleWebSocket))
}
