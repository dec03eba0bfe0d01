// Package storage keeps uploaded fridge photos on local disk, optionally
// mirroring them to S3.
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"FridgeMood/pkg/s3"
	"FridgeMood/pkg/utils"

	"github.com/sirupsen/logrus"
)

const maxNameAttempts = 3

var ErrNameCollision = errors.New("could not allocate a unique upload name")

// StoredImage is an upload that has been written to disk.
type StoredImage struct {
	Name   string
	Path   string
	Size   int64
	Digest string
}

type IStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader) (*StoredImage, error)
	SaveBytes(ctx context.Context, originalName string, data []byte) (*StoredImage, error)
	Dir() string
}

type localStorage struct {
	dir    string
	utils  utils.IUtils
	mirror s3.ItfS3
	log    *logrus.Logger
}

// New creates dir when missing. mirror may be nil.
func New(dir string, u utils.IUtils, mirror s3.ItfS3, log *logrus.Logger) (IStorage, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &localStorage{
		dir:    abs,
		utils:  u,
		mirror: mirror,
		log:    log,
	}, nil
}

func (s *localStorage) Dir() string {
	return s.dir
}

// Save writes file under a fresh random name. Existing files are never
// overwritten; a name clash is retried with a new name.
func (s *localStorage) Save(ctx context.Context, file *multipart.FileHeader) (*StoredImage, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return s.write(ctx, file.Filename, src)
}

// SaveBytes stores an in-memory image, such as a WebSocket frame, the same
// way Save stores an upload.
func (s *localStorage) SaveBytes(ctx context.Context, originalName string, data []byte) (*StoredImage, error) {
	return s.write(ctx, originalName, bytes.NewReader(data))
}

func (s *localStorage) write(ctx context.Context, originalName string, src io.Reader) (*StoredImage, error) {
	var (
		err  error
		dst  *os.File
		name string
		path string
	)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name = s.utils.NewUploadName(originalName)
		path = filepath.Join(s.dir, name)

		dst, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create %s: %w", name, err)
		}
		s.log.Warnf("Upload name %s already taken, retrying", name)
	}
	if dst == nil {
		return nil, ErrNameCollision
	}

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(dst, hash), src)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write %s: %w", name, err)
	}

	stored := &StoredImage{
		Name:   name,
		Path:   path,
		Size:   size,
		Digest: hex.EncodeToString(hash.Sum(nil)),
	}

	if s.mirror != nil {
		location, err := s.mirror.UploadFile(ctx, "uploads/"+name, path)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"file":  name,
				"error": err.Error(),
			}).Warn("Failed to mirror upload to S3")
		} else {
			s.log.WithFields(logrus.Fields{
				"file":     name,
				"location": location,
			}).Debug("Upload mirrored to S3")
		}
	}

	return stored, nil
}
