package fridgeHandler

import (
	"bytes"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"FridgeMood/internal/api/fridge"
	fridgeService "FridgeMood/internal/api/fridge/service"
	"FridgeMood/internal/entity"
	"FridgeMood/internal/middleware"
	"FridgeMood/pkg/detector"
	"FridgeMood/pkg/log"
	"FridgeMood/pkg/mood"
	"FridgeMood/pkg/storage"
	"FridgeMood/pkg/utils"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
)

var storedNameRe = regexp.MustCompile(`^[0-9a-f]{32}\.jpg$`)

type fakeDetector struct {
	labels []string
	err    error
	block  bool
}

func (f *fakeDetector) Detect(ctx context.Context, _ string) ([]entity.Detection, error) {
	if f.block {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %w", detector.ErrDetectionFailed, ctx.Err())
	}
	if f.err != nil {
		return nil, f.err
	}

	dets := make([]entity.Detection, len(f.labels))
	for i, l := range f.labels {
		dets[i] = entity.Detection{Label: l, Confidence: 0.8}
	}
	return dets, nil
}

func (f *fakeDetector) Name() string { return "fake" }
func (f *fakeDetector) Close() error { return nil }

type testApp struct {
	app       *fiber.App
	staticDir string
}

const testFrameLimit = 1 << 10

func newTestApp(t *testing.T, det detector.IDetector, timeout time.Duration, burst int) *testApp {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	logger := log.NewLogger()
	u := utils.New(0)

	store, err := storage.New(t.TempDir(), u, nil, logger)
	if err != nil {
		t.Fatal(err)
	}

	svc := fridgeService.New(logger, det, store, mood.NewGenerator(rand.New(rand.NewPCG(1, 1))), nil, time.Hour, u)
	mw := middleware.New(logger, u, 0.001, burst)

	staticDir := t.TempDir()
	app := fiber.New(fiber.Config{
		JSONEncoder: jsoniter.Marshal,
		JSONDecoder: jsoniter.Unmarshal,
	})
	app.Use(mw.NewRequestIDMiddleware())

	New(logger, mw, svc, staticDir, timeout, testFrameLimit).Start(app)

	return &testApp{app: app, staticDir: staticDir}
}

func uploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	h.Set("Content-Type", "image/jpeg")
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func httptestGet(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}

func do(t *testing.T, app *fiber.App, req *http.Request, out interface{}) *http.Response {
	t.Helper()

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		raw, _ := io.ReadAll(resp.Body)
		if err := jsoniter.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode %q: %v", raw, err)
		}
	}
	return resp
}

func TestUploadMissingImagePart(t *testing.T) {
	ta := newTestApp(t, &fakeDetector{}, time.Second, 100)

	var body map[string]string
	resp := do(t, ta.app, uploadRequest(t, "photo", "fridge.jpg", []byte("img")), &body)

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if body["error"] != "No image part" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestUploadNotMultipart(t *testing.T) {
	ta := newTestApp(t, &fakeDetector{}, time.Second, 100)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"image":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	var body map[string]string
	resp := do(t, ta.app, req, &body)

	if resp.StatusCode != fiber.StatusBadRequest || body["error"] != "No image part" {
		t.Errorf("got %d %v", resp.StatusCode, body)
	}
}

func TestUploadEmptyFilename(t *testing.T) {
	ta := newTestApp(t, &fakeDetector{}, time.Second, 100)

	var body map[string]string
	resp := do(t, ta.app, uploadRequest(t, "image", "", nil), &body)

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if body["error"] != "No selected file" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestUploadImageTextField(t *testing.T) {
	ta := newTestApp(t, &fakeDetector{}, time.Second, 100)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if err := w.WriteField("image", "not a file"); err != nil {
		t.Fatal(err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out map[string]string
	resp := do(t, ta.app, req, &out)

	if resp.StatusCode != fiber.StatusBadRequest || out["error"] != "No image part" {
		t.Errorf("got %d %v", resp.StatusCode, out)
	}
}

func TestUploadSuccess(t *testing.T) {
	ta := newTestApp(t, &fakeDetector{labels: []string{"apple", "APPLE", "milk"}}, time.Second, 100)

	var body fridge.MoodResponse
	resp := do(t, ta.app, uploadRequest(t, "image", "my fridge.jpg", []byte("img")), &body)

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get(middleware.RequestIDKey) == "" {
		t.Error("response carries no request id")
	}
	if len(body.Moods) != 2 || body.Moods[0].Name != "apple" || body.Moods[1].Name != "milk" {
		t.Errorf("unexpected moods: %+v", body.Moods)
	}
	if !strings.HasSuffix(body.Mood, "Final Mood: "+body.FinalMood) {
		t.Errorf("mood text missing final mood:\n%s", body.Mood)
	}
	if !storedNameRe.MatchString(body.Filename) {
		t.Errorf("unexpected filename %q", body.Filename)
	}
}

func TestUploadSameImageSameLabels(t *testing.T) {
	ta := newTestApp(t, &fakeDetector{labels: []string{"egg", "cheese", "Egg"}}, time.Second, 100)

	var first, second fridge.MoodResponse
	do(t, ta.app, uploadRequest(t, "image", "a.jpg", []byte("img")), &first)
	do(t, ta.app, uploadRequest(t, "image", "a.jpg", []byte("img")), &second)

	if len(first.Moods) != len(second.Moods) {
		t.Fatalf("entry counts differ: %d vs %d", len(first.Moods), len(second.Moods))
	}
	for i := range first.Moods {
		if first.Moods[i].Name != second.Moods[i].Name {
			t.Errorf("entry %d: %q vs %q", i, first.Moods[i].Name, second.Moods[i].Name)
		}
	}
	if first.Filename == second.Filename {
		t.Error("same original name produced the same stored name")
	}
}

func TestUploadDetectorFailure(t *testing.T) {
	det := &fakeDetector{err: fmt.Errorf("%w: corrupt image", detector.ErrDetectionFailed)}
	ta := newTestApp(t, det, time.Second, 100)

	var body map[string]string
	resp := do(t, ta.app, uploadRequest(t, "image", "a.jpg", []byte("img")), &body)

	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	if body["error"] != "Detection failed" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestUploadTimeout(t *testing.T) {
	ta := newTestApp(t, &fakeDetector{block: true}, 20*time.Millisecond, 100)

	resp := do(t, ta.app, uploadRequest(t, "image", "a.jpg", []byte("img")), nil)

	if resp.StatusCode != fiber.StatusRequestTimeout {
		t.Errorf("status = %d, want 408", resp.StatusCode)
	}
}

func TestUploadRateLimited(t *testing.T) {
	ta := newTestApp(t, &fakeDetector{labels: []string{"milk"}}, time.Second, 1)

	if resp := do(t, ta.app, uploadRequest(t, "image", "a.jpg", []byte("img")), nil); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("first upload status = %d", resp.StatusCode)
	}
	if resp := do(t, ta.app, uploadRequest(t, "image", "a.jpg", []byte("img")), nil); resp.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("second upload status = %d, want 429", resp.StatusCode)
	}
}

func TestIndexPage(t *testing.T) {
	ta := newTestApp(t, &fakeDetector{}, time.Second, 100)

	page := "<html><body>fridge</body></html>"
	if err := os.WriteFile(filepath.Join(ta.staticDir, indexPage), []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"/", "/index12.html"} {
		resp := do(t, ta.app, httptestGet(path), nil)
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("GET %s status = %d", path, resp.StatusCode)
		}
	}
}

func TestHealth(t *testing.T) {
	ta := newTestApp(t, &fakeDetector{}, time.Second, 100)

	var body fridge.HealthResponse
	resp := do(t, ta.app, httptestGet("/health"), &body)

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if body.Message != "Server is Healthy!" || body.Detector.Backend != "fake" || !body.Detector.Healthy {
		t.Errorf("unexpected health body %+v", body)
	}
}
