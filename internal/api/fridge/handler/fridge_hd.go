package fridgeHandler

import (
	"FridgeMood/internal/api/fridge"
	contextPkg "FridgeMood/pkg/context"
	"FridgeMood/pkg/handlerUtil"
	"FridgeMood/pkg/log"
	"bytes"
	"errors"
	"mime"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *FridgeHandler) Upload(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	file, err := uploadedImage(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_upload")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing fridge upload")

	result, err := h.fridgeService.AnalyzeFridge(c, file)
	if err != nil {
		if errors.Is(c.Err(), context.DeadlineExceeded) {
			return errHandler.HandleRequestTimeout(ctx)
		}
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analyze_fridge")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"filename":   result.Filename,
			"items":      len(result.Moods),
		}).Info("Fridge mood generated")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

// uploadedImage pulls the image part out of the multipart body. A part sent
// with an empty filename arrives as a plain form value, the same as a text
// field, so the raw part headers decide which error applies.
func uploadedImage(ctx *fiber.Ctx) (*multipart.FileHeader, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, fridge.ErrNoImagePart
	}

	files := form.File[imageField]
	if len(files) == 0 {
		if _, ok := form.Value[imageField]; ok && imagePartHasFilename(ctx) {
			return nil, fridge.ErrNoSelectedFile
		}
		return nil, fridge.ErrNoImagePart
	}

	if files[0].Filename == "" {
		return nil, fridge.ErrNoSelectedFile
	}

	return files[0], nil
}

// imagePartHasFilename reports whether the image part declares a filename
// parameter, even an empty one.
func imagePartHasFilename(ctx *fiber.Ctx) bool {
	_, params, err := mime.ParseMediaType(ctx.Get(fiber.HeaderContentType))
	if err != nil || params["boundary"] == "" {
		return false
	}

	mr := multipart.NewReader(bytes.NewReader(ctx.Body()), params["boundary"])
	for {
		part, err := mr.NextRawPart()
		if err != nil {
			return false
		}
		_, disposition, err := mime.ParseMediaType(part.Header.Get(fiber.HeaderContentDisposition))
		if err != nil || disposition["name"] != imageField {
			continue
		}
		_, ok := disposition["filename"]
		return ok
	}
}

func (h *FridgeHandler) Index(ctx *fiber.Ctx) error {
	return ctx.SendFile(filepath.Join(h.staticDir, indexPage))
}

func (h *FridgeHandler) Health(ctx *fiber.Ctx) error {
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	return ctx.JSON(fridge.HealthResponse{
		Message:  "Server is Healthy!",
		Detector: h.fridgeService.DetectorStatus(c),
	})
}
