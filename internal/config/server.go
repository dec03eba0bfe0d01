package config

import (
	fridgeHandler "FridgeMood/internal/api/fridge/handler"
	fridgeService "FridgeMood/internal/api/fridge/service"
	"FridgeMood/internal/middleware"
	"FridgeMood/pkg/detector"
	"FridgeMood/pkg/mood"
	"FridgeMood/pkg/redis"
	"FridgeMood/pkg/s3"
	"FridgeMood/pkg/storage"
	"FridgeMood/pkg/utils"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

type ServerOption func(*Server) error

type Server struct {
	engine        *fiber.App
	env           *Env
	log           *logrus.Logger
	middleware    middleware.Middleware
	utils         utils.IUtils
	handlers      []handler
	detector      detector.IDetector
	storage       storage.IStorage
	moodGenerator mood.IGenerator
	redisServer   redis.IRedis
	s3Client      s3.ItfS3
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.env == nil {
		return nil, fmt.Errorf("environment is required")
	}

	return server, nil
}

func WithEnv(env *Env) ServerOption {
	return func(s *Server) error {
		s.env = env
		return nil
	}
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		if s.env == nil {
			return fmt.Errorf("environment must be set before utils")
		}
		s.utils = utils.New(s.env.UploadMaxSize)
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil || s.utils == nil {
			return fmt.Errorf("logger and utils must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, s.utils, s.env.RateLimitRPS, s.env.RateLimitBurst)
		return nil
	}
}

// WithS3Client enables the upload mirror when a bucket is configured.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		if !s.env.MirrorEnabled() {
			return nil
		}

		client, err := s3.New(s3.Config{
			Region:          s.env.AWSRegion,
			AccessKeyID:     s.env.AWSAccessKeyID,
			SecretAccessKey: s.env.AWSSecretAccessKey,
			Bucket:          s.env.AWSBucketName,
		})
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithStorage() ServerOption {
	return func(s *Server) error {
		if s.utils == nil {
			return fmt.Errorf("utils must be initialized before storage")
		}

		store, err := storage.New(s.env.UploadDir, s.utils, s.s3Client, s.log)
		if err != nil {
			return fmt.Errorf("failed to create upload storage: %w", err)
		}
		s.storage = store
		return nil
	}
}

// WithRedisServer enables the label cache when an address is configured.
func WithRedisServer() ServerOption {
	return func(s *Server) error {
		if !s.env.CacheEnabled() {
			return nil
		}

		s.redisServer = redis.New(redis.Options{
			Addr:     s.env.RedisAddress,
			Password: s.env.RedisPassword,
			DB:       s.env.RedisDB,
		}, s.log)
		return nil
	}
}

func WithDetector() ServerOption {
	return func(s *Server) error {
		det, err := detector.New(detector.Config{
			Backend:           s.env.DetectorBackend,
			ModelPath:         s.env.ModelPath,
			MetadataPath:      s.env.ModelMetadataPath,
			SharedLibraryPath: s.env.OnnxRuntimeLibPath,
			PoolSize:          s.env.DetectorPoolSize,
			Confidence:        s.env.DetectorConfidence,
			IoU:               s.env.DetectorIoU,
			InferenceURL:      s.env.InferenceURL,
			InferenceWSURL:    s.env.InferenceWSURL,
			Timeout:           s.env.DetectionTimeout,
			GeminiAPIKey:      s.env.GeminiAPIKey,
			GeminiModel:       s.env.GeminiModelName,
		}, s.log)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create %s detector: %v", s.env.DetectorBackend, err)
			}
			return fmt.Errorf("failed to create detector: %w", err)
		}
		s.detector = det
		return nil
	}
}

func WithMoodGenerator(generator mood.IGenerator) ServerOption {
	return func(s *Server) error {
		s.moodGenerator = generator
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Fridge Domain
	fridgeServices := fridgeService.New(s.log, s.detector, s.storage, s.moodGenerator, s.redisServer, s.env.DetectionCacheTTL, s.utils)
	fridgeHandlers := fridgeHandler.New(s.log, s.middleware, fridgeServices, s.env.StaticDir, s.env.DetectionTimeout, s.env.UploadMaxSize)

	s.handlers = append(s.handlers, fridgeHandlers)
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())

	for _, h := range s.handlers {
		h.Start(s.engine)
	}

	return s.engine.Listen(fmt.Sprintf(":%s", s.env.Port))
}

// Shutdown stops accepting requests, waits for in-flight ones and then
// releases the detector and the cache connection.
func (s *Server) Shutdown() error {
	var errs []error

	if err := s.engine.ShutdownWithTimeout(shutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	if s.detector != nil {
		if err := s.detector.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close detector: %w", err))
		}
	}

	if s.redisServer != nil {
		if err := s.redisServer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	return errors.Join(errs...)
}
