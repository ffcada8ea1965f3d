package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-parser/internal/enhance"
	"resume-parser/internal/llm"
	"resume-parser/internal/ocr"
	"resume-parser/internal/parsing"
	"resume-parser/internal/resumes"
	"resume-parser/internal/services/health"
	"resume-parser/internal/shared/config"
	"resume-parser/internal/shared/server"
	"resume-parser/internal/shared/storage/db"
	"resume-parser/internal/shared/storage/object"
	localstore "resume-parser/internal/shared/storage/object/local"
	s3store "resume-parser/internal/shared/storage/object/s3"
	"resume-parser/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	OCR            *ocr.Tesseract
	Parser         *parsing.Service
	ResumeRepo     resumes.Repo
	ResumesService *resumes.Service
	EnhanceService *enhance.Service
	Health         *health.Service

	closers []func() error
}

// Build prepares shared dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	telemetry.SetLevel(cfg.LogLevel)

	app := &App{Config: cfg, Health: health.NewService()}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB.Close)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	pipeline, err := BuildPipeline(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, pipeline.Close)
	app.OCR = pipeline.OCR
	app.Parser = pipeline.Parser

	if app.DB != nil {
		app.ResumeRepo = &resumes.PGRepo{DB: app.DB}
	} else {
		app.ResumeRepo = resumes.NewMemoryRepo()
	}
	app.ResumesService = resumes.NewService(app.Parser, app.Store, app.ResumeRepo)
	app.EnhanceService = enhance.NewService(pipeline.Enhancer)

	app.registerChecks()

	app.Router = server.NewRouter(server.RouterDeps{
		Config:  cfg,
		Health:  health.NewHandler(app.Health),
		Resumes: resumes.NewHandler(app.ResumesService, cfg.MaxUploadBytes, cfg.ParseTimeout),
		Enhance: enhance.NewHandler(app.EnhanceService),
	})

	return app, nil
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database unavailable", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func (a *App) registerChecks() {
	provider := a.Config.LLMProvider
	configured := a.EnhanceService.Mode() == enhance.ModeModel
	a.Health.Register("llm", func(context.Context) error {
		if !configured {
			return fmt.Errorf("%s: %w", provider, llm.ErrNotConfigured)
		}
		return nil
	})
	a.Health.Register("ocr", func(context.Context) error {
		return a.OCR.Available()
	})
	if a.DB != nil {
		a.Health.Register("database", func(ctx context.Context) error {
			return db.Ping(ctx, a.DB, 2*time.Second)
		})
	}
	if a.Config.ObjectStoreType == "local" {
		dir := a.Config.LocalStoreDir
		a.Health.Register("store", func(context.Context) error {
			return os.MkdirAll(dir, 0o755)
		})
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
