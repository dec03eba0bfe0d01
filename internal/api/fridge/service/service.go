package fridgeService

import (
	"FridgeMood/internal/api/fridge"
	"FridgeMood/pkg/detector"
	"FridgeMood/pkg/mood"
	"FridgeMood/pkg/redis"
	"FridgeMood/pkg/storage"
	"FridgeMood/pkg/utils"
	"mime/multipart"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IFridgeService interface {
	AnalyzeFridge(ctx context.Context, file *multipart.FileHeader) (*fridge.MoodResponse, error)
	AnalyzeFrame(ctx context.Context, frame []byte) (*fridge.MoodResponse, error)
	DetectorStatus(ctx context.Context) fridge.DetectorStatus
}

type fridgeService struct {
	log      *logrus.Logger
	detector detector.IDetector
	storage  storage.IStorage
	moods    mood.IGenerator
	cache    redis.IRedis
	cacheTTL time.Duration
	utils    utils.IUtils
}

// New wires the fridge service. cache may be nil, in which case every
// upload goes through the detector.
func New(
	log *logrus.Logger,
	det detector.IDetector,
	store storage.IStorage,
	moods mood.IGenerator,
	cache redis.IRedis,
	cacheTTL time.Duration,
	utils utils.IUtils,
) IFridgeService {
	return &fridgeService{
		log:      log,
		detector: det,
		storage:  store,
		moods:    moods,
		cache:    cache,
		cacheTTL: cacheTTL,
		utils:    utils,
	}
}
