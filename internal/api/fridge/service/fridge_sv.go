package fridgeService

import (
	"FridgeMood/internal/api/fridge"
	"FridgeMood/pkg/detector"
	"FridgeMood/pkg/labels"
	"FridgeMood/pkg/log"
	"FridgeMood/pkg/mood"
	"FridgeMood/pkg/storage"
	"FridgeMood/pkg/utils"
	"errors"
	"fmt"
	"mime/multipart"

	"golang.org/x/net/context"
)

func (s *fridgeService) AnalyzeFridge(ctx context.Context, file *multipart.FileHeader) (*fridge.MoodResponse, error) {
	if err := s.utils.ValidateImageFile(file); err != nil {
		return nil, uploadError(err)
	}

	stored, err := s.storage.Save(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	return s.analyze(ctx, stored)
}

// AnalyzeFrame handles a raw image pushed over the WebSocket endpoint.
func (s *fridgeService) AnalyzeFrame(ctx context.Context, frame []byte) (*fridge.MoodResponse, error) {
	ext, err := s.utils.ValidateImageBytes(frame)
	if err != nil {
		return nil, uploadError(err)
	}

	stored, err := s.storage.SaveBytes(ctx, "frame"+ext, frame)
	if err != nil {
		return nil, fmt.Errorf("store frame: %w", err)
	}

	return s.analyze(ctx, stored)
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, utils.ErrFileTooLarge):
		return fridge.ErrFileTooLarge
	case errors.Is(err, utils.ErrNotAnImage):
		return fridge.ErrInvalidImage
	case errors.Is(err, utils.ErrNoFile):
		return fridge.ErrNoImagePart
	}
	return err
}

func (s *fridgeService) analyze(ctx context.Context, stored *storage.StoredImage) (*fridge.MoodResponse, error) {
	found, err := s.uniqueLabels(ctx, stored)
	if err != nil {
		return nil, err
	}

	entries, finalMood := s.moods.Generate(found)

	log.WithRequestID(ctx).WithFields(log.Fields{
		"file":   stored.Name,
		"labels": found,
	}).Info("Fridge analysed")

	return &fridge.MoodResponse{
		Mood:      mood.Render(entries, finalMood),
		Moods:     entries,
		FinalMood: finalMood,
		Filename:  stored.Name,
	}, nil
}

// uniqueLabels returns the deduplicated labels for the stored image, using
// the digest cache when one is configured. Cache errors never fail a request.
func (s *fridgeService) uniqueLabels(ctx context.Context, stored *storage.StoredImage) ([]string, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetLabels(ctx, stored.Digest)
		if err != nil {
			s.log.WithFields(log.Fields{
				"digest": stored.Digest,
				"error":  err.Error(),
			}).Warn("Label cache lookup failed")
		} else if ok {
			s.log.WithField("digest", stored.Digest).Debug("Label cache hit")
			return cached, nil
		}
	}

	detections, err := s.detector.Detect(ctx, stored.Path)
	if err != nil {
		return nil, err
	}

	found := labels.Dedupe(labels.FromDetections(detections))

	if s.cache != nil {
		if err := s.cache.SetLabels(ctx, stored.Digest, found, s.cacheTTL); err != nil {
			s.log.WithFields(log.Fields{
				"digest": stored.Digest,
				"error":  err.Error(),
			}).Warn("Failed to cache labels")
		}
	}

	return found, nil
}

func (s *fridgeService) DetectorStatus(ctx context.Context) fridge.DetectorStatus {
	status := fridge.DetectorStatus{
		Backend: s.detector.Name(),
		Healthy: true,
	}

	if checker, ok := s.detector.(detector.HealthChecker); ok {
		if err := checker.CheckHealth(ctx); err != nil {
			status.Healthy = false
			status.Error = err.Error()
		}
	}

	return status
}
