package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Env is the process configuration, read once from the environment.
type Env struct {
	Port          string `validate:"required,numeric"`
	AppEnv        string `validate:"oneof=development production test"`
	UploadDir     string `validate:"required"`
	UploadMaxSize int64  `validate:"gt=0"`
	StaticDir     string `validate:"required"`

	DetectorBackend    string `validate:"oneof=onnx http ws gemini"`
	ModelPath          string `validate:"required"`
	ModelMetadataPath  string
	OnnxRuntimeLibPath string
	DetectorPoolSize   int           `validate:"gte=0,lte=64"`
	DetectorConfidence float64       `validate:"gt=0,lte=1"`
	DetectorIoU        float64       `validate:"gt=0,lte=1"`
	DetectionTimeout   time.Duration `validate:"gt=0"`

	InferenceURL   string `validate:"required,url"`
	InferenceWSURL string `validate:"required,url"`

	GeminiAPIKey    string `validate:"required_if=DetectorBackend gemini"`
	GeminiModelName string

	RedisAddress      string `validate:"omitempty,hostname_port"`
	RedisPassword     string
	RedisDB           int           `validate:"gte=0"`
	DetectionCacheTTL time.Duration `validate:"gte=0"`

	AWSRegion          string `validate:"required_with=AWSBucketName"`
	AWSAccessKeyID     string `validate:"required_with=AWSSecretAccessKey"`
	AWSSecretAccessKey string `validate:"required_with=AWSAccessKeyID"`
	AWSBucketName      string

	RateLimitRPS   float64 `validate:"gt=0"`
	RateLimitBurst int     `validate:"gt=0"`
}

// LoadEnv reads the environment, applies defaults and validates the result.
func LoadEnv(v *validator.Validate) (*Env, error) {
	p := &envParser{}

	env := &Env{
		Port:          p.str("PORT", "5000"),
		AppEnv:        p.str("APP_ENV", "development"),
		UploadDir:     p.str("UPLOAD_DIR", "uploads"),
		UploadMaxSize: p.int64("UPLOAD_MAX_SIZE", 16*1024*1024),
		StaticDir:     p.str("STATIC_DIR", "static"),

		DetectorBackend:    p.str("DETECTOR_BACKEND", "onnx"),
		ModelPath:          p.str("MODEL_PATH", "models/yolov8n.onnx"),
		ModelMetadataPath:  p.str("MODEL_METADATA_PATH", ""),
		OnnxRuntimeLibPath: p.str("ONNXRUNTIME_LIB_PATH", ""),
		DetectorPoolSize:   p.int("DETECTOR_POOL_SIZE", 0),
		DetectorConfidence: p.float("DETECTOR_CONFIDENCE", 0.25),
		DetectorIoU:        p.float("DETECTOR_IOU", 0.7),
		DetectionTimeout:   p.duration("DETECTION_TIMEOUT", 30*time.Second),

		InferenceURL:   p.str("INFERENCE_URL", "http://localhost:8000/predict"),
		InferenceWSURL: p.str("INFERENCE_WS_URL", "ws://localhost:8000/api/v1/detect/ws"),

		GeminiAPIKey:    p.str("GEMINI_API_KEY", ""),
		GeminiModelName: p.str("GEMINI_MODEL_NAME", "gemini-1.5-flash"),

		RedisAddress:      p.str("REDIS_ADDRESS", ""),
		RedisPassword:     p.str("REDIS_PASSWORD", ""),
		RedisDB:           p.int("REDIS_DB", 0),
		DetectionCacheTTL: p.duration("DETECTION_CACHE_TTL", time.Hour),

		AWSRegion:          p.str("AWS_REGION", ""),
		AWSAccessKeyID:     p.str("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: p.str("AWS_SECRET_ACCESS_KEY", ""),
		AWSBucketName:      p.str("AWS_BUCKET_NAME", ""),

		RateLimitRPS:   p.float("RATE_LIMIT_RPS", 5),
		RateLimitBurst: p.int("RATE_LIMIT_BURST", 10),
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := v.Struct(env); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	return env, nil
}

// CacheEnabled reports whether a Redis address is configured.
func (e *Env) CacheEnabled() bool {
	return e.RedisAddress != ""
}

// MirrorEnabled reports whether uploads are copied to S3.
func (e *Env) MirrorEnabled() bool {
	return e.AWSBucketName != ""
}

type envParser struct {
	errs []error
}

func (p *envParser) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (p *envParser) int(key string, def int) int {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func (p *envParser) int64(key string, def int64) int64 {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func (p *envParser) float(key string, def float64) float64 {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func (p *envParser) duration(key string, def time.Duration) time.Duration {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}
