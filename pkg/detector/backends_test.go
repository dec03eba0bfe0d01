package detector

import (
	"context"
	"errors"
	"testing"

	"FridgeMood/internal/entity"
	"FridgeMood/pkg/log"
)

type fakeGemini struct {
	answer   string
	err      error
	mimeType string
	closed   bool
}

func (f *fakeGemini) AnalyzeImage(_ context.Context, _ []byte, mimeType string, _ string) (string, error) {
	f.mimeType = mimeType
	return f.answer, f.err
}

func (f *fakeGemini) Close() error {
	f.closed = true
	return nil
}

type fakeWebsocket struct {
	result *entity.InferenceResult
	err    error
	frame  []byte
	closed bool
}

func (f *fakeWebsocket) ProcessFrame(_ context.Context, frame []byte) (*entity.InferenceResult, error) {
	f.frame = frame
	return f.result, f.err
}

func (f *fakeWebsocket) IsConnected() bool { return true }
func (f *fakeWebsocket) Reconnect() error  { return nil }
func (f *fakeWebsocket) CloseConnections() { f.closed = true }

// pngHeader is enough for content sniffing to report image/png.
const pngHeader = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

func TestGeminiDetector(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	client := &fakeGemini{answer: "```json\n{\"items\": [\"apple\", \" \", \"Milk carton\", \"apple\"]}\n```"}
	d := NewGeminiDetector(client, log.NewLogger())

	dets, err := d.Detect(context.Background(), writeTempImage(t, pngHeader))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if client.mimeType != "image/png" {
		t.Errorf("mime type = %q, want image/png", client.mimeType)
	}

	want := []string{"apple", "Milk carton", "apple"}
	if len(dets) != len(want) {
		t.Fatalf("got %d detections, want %d", len(dets), len(want))
	}
	for i, w := range want {
		if dets[i].Label != w || dets[i].Confidence != 1 {
			t.Errorf("detection %d = %+v, want label %q", i, dets[i], w)
		}
	}

	if err := d.Close(); err != nil || !client.closed {
		t.Errorf("Close did not close the client: %v", err)
	}
}

func TestGeminiDetectorErrors(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	tests := []struct {
		name    string
		content string
		client  *fakeGemini
	}{
		{"not an image", "hello world", &fakeGemini{answer: `{"items": []}`}},
		{"api error", pngHeader, &fakeGemini{err: errors.New("quota exceeded")}},
		{"no json", pngHeader, &fakeGemini{answer: "I see some apples"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewGeminiDetector(tt.client, log.NewLogger())
			_, err := d.Detect(context.Background(), writeTempImage(t, tt.content))
			if !errors.Is(err, ErrDetectionFailed) {
				t.Errorf("expected ErrDetectionFailed, got %v", err)
			}
		})
	}
}

func TestParseGeminiItemsEmptyFridge(t *testing.T) {
	items, err := parseGeminiItems(`{"items": []}`)
	if err != nil {
		t.Fatalf("parseGeminiItems failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %v", items)
	}
}

func TestWebSocketDetector(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	client := &fakeWebsocket{result: &entity.InferenceResult{
		Detections: []entity.InferenceDetection{{Label: "cake", Confidence: 0.7, BBox: []float64{0, 0, 5, 5}}},
	}}
	d := NewWebSocketDetector(client, defaultMetadata(t), log.NewLogger())

	dets, err := d.Detect(context.Background(), writeTempImage(t, "frame"))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if string(client.frame) != "frame" {
		t.Errorf("frame = %q, want raw file bytes", client.frame)
	}
	if len(dets) != 1 || dets[0].Label != "cake" || dets[0].Box.Y2 != 5 {
		t.Errorf("unexpected detections %+v", dets)
	}

	d.Close()
	if !client.closed {
		t.Error("Close did not close the connection")
	}
}

func TestWebSocketDetectorResolvesClassIndex(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	client := &fakeWebsocket{result: &entity.InferenceResult{
		Detections: []entity.InferenceDetection{{ClassID: classIndex(46), Confidence: 0.7}},
	}}
	d := NewWebSocketDetector(client, defaultMetadata(t), log.NewLogger())

	dets, err := d.Detect(context.Background(), writeTempImage(t, "frame"))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(dets) != 1 || dets[0].Label != "banana" {
		t.Errorf("unexpected detections %+v", dets)
	}
}

func TestWebSocketDetectorErrors(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	for _, client := range []*fakeWebsocket{
		{err: errors.New("connection refused")},
		{result: &entity.InferenceResult{Error: "bad frame"}},
	} {
		d := NewWebSocketDetector(client, defaultMetadata(t), log.NewLogger())
		if _, err := d.Detect(context.Background(), writeTempImage(t, "frame")); !errors.Is(err, ErrDetectionFailed) {
			t.Errorf("expected ErrDetectionFailed, got %v", err)
		}
	}
}

func TestNewUnknownBackend(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	if _, err := New(Config{Backend: "tensorflow"}, log.NewLogger()); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := New(Config{Backend: BackendGemini}, log.NewLogger()); err == nil {
		t.Error("expected error for gemini backend without API key")
	}

	d, err := New(Config{Backend: BackendHTTP, InferenceURL: "http://localhost:1"}, log.NewLogger())
	if err != nil || d.Name() != BackendHTTP {
		t.Errorf("expected http backend, got %v, %v", d, err)
	}
}
