package utils

import (
	"crypto/rand"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrNoFile        = errors.New("no file uploaded")
	ErrFileTooLarge  = errors.New("file size exceeds limit")
	ErrNotAnImage    = errors.New("uploaded file is not an image")
	unsafeFilenameRe = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
)

// Device names that Windows refuses as file names.
var windowsDeviceNames = map[string]struct{}{
	"CON": {}, "AUX": {}, "COM1": {}, "COM2": {}, "COM3": {}, "COM4": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "PRN": {}, "NUL": {},
}

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ValidateImageBytes(data []byte) (string, error)
	SecureFilename(name string) string
	NewUploadName(originalName string) string
}

type utils struct {
	maxFileSize int64
}

// New returns utils that reject uploads above maxFileSize bytes.
// A non-positive size falls back to 16 MiB.
func New(maxFileSize int64) IUtils {
	if maxFileSize <= 0 {
		maxFileSize = 16 * 1024 * 1024
	}
	return &utils{
		maxFileSize: maxFileSize,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if file.Size > u.maxFileSize {
		return ErrFileTooLarge
	}

	// Browsers and curl omit the type sometimes; the detector rejects non-images anyway.
	contentType := file.Header.Get("Content-Type")
	if contentType != "" && contentType != "application/octet-stream" && !strings.HasPrefix(contentType, "image/") {
		return ErrNotAnImage
	}

	return nil
}

// Extensions for the image types the detectors accept, keyed by sniffed
// content type.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ValidateImageBytes sniffs an in-memory image and returns the file
// extension matching its content.
func (u *utils) ValidateImageBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNoFile
	}

	if int64(len(data)) > u.maxFileSize {
		return "", ErrFileTooLarge
	}

	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return "", ErrNotAnImage
	}

	return ext, nil
}

// SecureFilename reduces name to a flat ASCII file name that is safe to
// join onto a directory. It may return "" when nothing usable is left.
func (u *utils) SecureFilename(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	ascii, _, err := transform.String(t, name)
	if err != nil {
		return ""
	}

	ascii = strings.NewReplacer("/", " ", "\\", " ").Replace(ascii)
	ascii = strings.Join(strings.Fields(ascii), "_")
	ascii = unsafeFilenameRe.ReplaceAllString(ascii, "")
	ascii = strings.Trim(ascii, "._")

	if ascii != "" {
		stem := strings.ToUpper(strings.SplitN(ascii, ".", 2)[0])
		if _, reserved := windowsDeviceNames[stem]; reserved {
			ascii = "_" + ascii
		}
	}

	return ascii
}

// NewUploadName returns a random 32-hex name that keeps only the
// extension of the sanitised original name.
func (u *utils) NewUploadName(originalName string) string {
	ext := filepath.Ext(u.SecureFilename(originalName))
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}
