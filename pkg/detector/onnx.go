package detector

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"FridgeMood/internal/entity"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
)

const maxPoolSize = 10

type onnxSession struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func (s *onnxSession) destroy() {
	if s.session != nil {
		s.session.Destroy()
	}
	if s.input != nil {
		s.input.Destroy()
	}
	if s.output != nil {
		s.output.Destroy()
	}
}

// ONNXDetector runs a YOLOv8 export in process. Each pooled session owns
// its tensors, so concurrent requests never share buffers.
type ONNXDetector struct {
	log        *logrus.Logger
	meta       ModelMetadata
	numAnchors int
	confidence float64
	iou        float64
	sessions   chan *onnxSession
	all        []*onnxSession
	closeOnce  sync.Once
}

func NewONNXDetector(cfg Config, log *logrus.Logger) (*ONNXDetector, error) {
	meta, err := LoadMetadata(cfg.MetadataPath)
	if err != nil {
		return nil, err
	}

	if cfg.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = int(math.Round(float64(runtime.NumCPU()) * 0.8))
	}
	poolSize = max(1, min(poolSize, maxPoolSize))

	d := &ONNXDetector{
		log:        log,
		meta:       meta,
		numAnchors: anchorCount(meta.ImageSize),
		confidence: cfg.Confidence,
		iou:        cfg.IoU,
		sessions:   make(chan *onnxSession, poolSize),
	}
	if d.confidence <= 0 {
		d.confidence = 0.25
	}
	if d.iou <= 0 {
		d.iou = 0.7
	}

	for i := 0; i < poolSize; i++ {
		s, err := d.newSession(cfg.ModelPath)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to create model session %d: %w", i, err)
		}
		d.all = append(d.all, s)
		d.sessions <- s
	}

	log.WithFields(logrus.Fields{
		"model":      cfg.ModelPath,
		"sessions":   poolSize,
		"image_size": meta.ImageSize,
		"classes":    len(meta.Names),
	}).Info("ONNX detector ready")

	return d, nil
}

func (d *ONNXDetector) newSession(modelPath string) (*onnxSession, error) {
	size := int64(d.meta.ImageSize)

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, size, size))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(4+len(d.meta.Names)), int64(d.numAnchors)))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	if err := options.SetIntraOpNumThreads(1); err != nil {
		d.log.Warnf("Failed to limit intra-op threads: %v", err)
	}
	if err := options.SetInterOpNumThreads(1); err != nil {
		d.log.Warnf("Failed to limit inter-op threads: %v", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{d.meta.InputName}, []string{d.meta.OutputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		options)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &onnxSession{session: session, input: input, output: output}, nil
}

func (d *ONNXDetector) Name() string {
	return BackendONNX
}

func (d *ONNXDetector) Detect(ctx context.Context, imagePath string) ([]entity.Detection, error) {
	img, err := loadImage(imagePath)
	if err != nil {
		return nil, failed("load image", err)
	}

	bounds := img.Bounds()
	tensor := toTensor(img, d.meta.ImageSize)

	var s *onnxSession
	select {
	case s = <-d.sessions:
	case <-ctx.Done():
		return nil, failed("wait for session", ctx.Err())
	}

	copy(s.input.GetData(), tensor)
	runErr := s.session.Run()
	var output []float32
	if runErr == nil {
		output = append([]float32(nil), s.output.GetData()...)
	}
	d.sessions <- s

	if runErr != nil {
		return nil, failed("inference", runErr)
	}

	size := float64(d.meta.ImageSize)
	detections, err := decodeOutput(output, d.meta, decodeParams{
		numAnchors: d.numAnchors,
		scaleX:     float64(bounds.Dx()) / size,
		scaleY:     float64(bounds.Dy()) / size,
		confidence: d.confidence,
		iou:        d.iou,
	})
	if err != nil {
		return nil, failed("decode output", err)
	}

	return detections, nil
}

// Close destroys every session and the ONNX environment.
func (d *ONNXDetector) Close() error {
	var err error
	d.closeOnce.Do(func() {
		for _, s := range d.all {
			s.destroy()
		}
		if ort.IsInitialized() {
			err = ort.DestroyEnvironment()
		}
	})
	return err
}
