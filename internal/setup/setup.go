package setup

import (
	"context"
	"fmt"

	"github.com/itchan-dev/boardapi/internal/config"
	"github.com/itchan-dev/boardapi/internal/handler"
	"github.com/itchan-dev/boardapi/internal/logger"
	"github.com/itchan-dev/boardapi/internal/media"
	"github.com/itchan-dev/boardapi/internal/service"
	"github.com/itchan-dev/boardapi/internal/storage/fs"
	"github.com/itchan-dev/boardapi/internal/storage/pg"
	"github.com/itchan-dev/boardapi/internal/storage/s3"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config  *config.Config
	Storage *pg.Storage
	Handler *handler.Handler
	GC      *service.MediaGarbageCollector
	// MediaRoot is set when media lives on the local filesystem and has to be
	// served by this process.
	MediaRoot string
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(ctx, cfg.Private.Pg)
	if err != nil {
		return nil, err
	}

	fileStore, mediaRoot, err := newFileStore(ctx, cfg)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}
	pipeline := media.NewPipeline(fileStore, cfg.Public.ThumbnailMaxSize, cfg.Public.MaxDecodedImageSize)

	board := service.NewBoard(storage, pipeline)
	thread := service.NewThread(storage, pipeline, service.NewBcryptHasher(cfg.Public.BcryptCost), &cfg.Public)
	gc := service.NewMediaGarbageCollector(storage, fileStore, cfg.Public.GC.SafetyThreshold)

	h := handler.New(board, thread, storage, cfg)

	return &Dependencies{
		Config:    cfg,
		Storage:   storage,
		Handler:   h,
		GC:        gc,
		MediaRoot: mediaRoot,
	}, nil
}

func newFileStore(ctx context.Context, cfg *config.Config) (media.FileStore, string, error) {
	switch cfg.Public.Media.Backend {
	case "s3":
		store, err := s3.New(ctx, cfg.Private.S3)
		if err != nil {
			return nil, "", fmt.Errorf("failed to init s3 media storage: %w", err)
		}
		logger.Log.Info("using s3 media storage", "endpoint", cfg.Private.S3.Endpoint, "bucket", cfg.Private.S3.Bucket)
		return store, "", nil
	default:
		store, err := fs.New(cfg.Public.Media.Root)
		if err != nil {
			return nil, "", fmt.Errorf("failed to init filesystem media storage: %w", err)
		}
		logger.Log.Info("using filesystem media storage", "root", store.Root())
		return store, store.Root(), nil
	}
}

// Close releases what SetupDependencies opened.
func (d *Dependencies) Close() {
	if err := d.Storage.Cleanup(); err != nil {
		logger.Log.Error("failed to close storage", "error", err)
	}
}
