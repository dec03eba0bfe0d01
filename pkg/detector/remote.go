package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"FridgeMood/internal/entity"

	"github.com/sirupsen/logrus"
)

// HTTPDetector posts the image to a remote inference service as the
// multipart field "file".
type HTTPDetector struct {
	url    string
	client *http.Client
	meta   ModelMetadata
	log    *logrus.Logger
}

// NewHTTPDetector resolves detections that carry only a class index
// through meta's names table.
func NewHTTPDetector(url string, timeout time.Duration, meta ModelMetadata, log *logrus.Logger) *HTTPDetector {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPDetector{
		url:    url,
		client: &http.Client{Timeout: timeout},
		meta:   meta,
		log:    log,
	}
}

func (d *HTTPDetector) Name() string {
	return BackendHTTP
}

func (d *HTTPDetector) Detect(ctx context.Context, imagePath string) ([]entity.Detection, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, failed("open image", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return nil, failed("create form file", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, failed("copy image data", err)
	}
	if err := writer.Close(); err != nil {
		return nil, failed("close multipart writer", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, body)
	if err != nil {
		return nil, failed("create request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, failed("send request", err)
	}
	defer resp.Body.Close()

	var result entity.InferenceResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && resp.StatusCode == http.StatusOK {
		return nil, failed("decode response", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := result.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, failed("inference", fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}
	if result.Error != "" {
		return nil, failed("inference", errors.New(result.Error))
	}

	d.log.WithFields(logrus.Fields{
		"url":        d.url,
		"detections": len(result.Detections),
	}).Debug("Remote inference finished")

	return result.ToDetections(d.meta.Lookup), nil
}

// CheckHealth calls <url>/health.
func (d *HTTPDetector) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service unhealthy: %d", resp.StatusCode)
	}
	return nil
}

func (d *HTTPDetector) Close() error {
	d.client.CloseIdleConnections()
	return nil
}
