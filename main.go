// Command garden_backend renders a garden layout across a span of the
// year: it selects representative days, composites seasonal sprites onto
// a canvas per day, and optionally re-renders each composite
// photorealistically through a chain of image-generation providers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"garden_backend/catalog"
	"garden_backend/compositor"
	"garden_backend/core"
	"garden_backend/imagegen"
	"garden_backend/jobstore"
	"garden_backend/logging"
	"garden_backend/pipeline"
	"garden_backend/shutdown"
)

// layoutFile is the YAML shape of a garden layout document.
type layoutFile struct {
	Garden  string `yaml:"garden"`
	Entries []struct {
		PlantID           string  `yaml:"plant_id"`
		GridX             float64 `yaml:"grid_x"`
		GridY             float64 `yaml:"grid_y"`
		Scale             float64 `yaml:"scale"`
		RenderWhenDormant *bool   `yaml:"render_when_dormant"`
	} `yaml:"entries"`
}

func main() {
	if err := run(); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		envPath    = flag.String("env", ".env", "path to .env configuration file")
		layoutPath = flag.String("layout", "layout.yaml", "path to garden layout YAML")
		startDay   = flag.Int("start", 0, "start day-of-year (1-365)")
		endDay     = flag.Int("end", 0, "end day-of-year (1-365, may wrap below start)")
		images     = flag.Int("images", 0, "number of images to render (0 = range default)")
		year       = flag.Int("year", 0, "calendar year for date rendering (0 = current)")
		enhance    = flag.Bool("enhance", false, "re-render composites photorealistically via providers")
		style      = flag.String("style", "", "optional style hint, e.g. \"english cottage\"")
	)
	flag.Parse()

	if *startDay == 0 || *endDay == 0 {
		return fmt.Errorf("both -start and -end are required")
	}

	cfg, err := core.LoadConfig(*envPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(cfg.Development, cfg.LogFile)
	defer logger.Sync()

	ctx, _ := shutdown.NewManager(context.Background(), logger)

	layout, gardenName, err := loadLayout(*layoutPath)
	if err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return core.ErrBadCatalogPath(cfg.CatalogPath, err.Error())
	}

	sprites, err := compositor.NewFSSpriteStore(cfg.SpritesDir)
	if err != nil {
		return err
	}
	comp, err := compositor.NewCompositor(sprites, logger)
	if err != nil {
		return err
	}

	store, err := imagegen.NewContentStore(cfg.OutputDir)
	if err != nil {
		return err
	}

	var enhancer pipeline.Enhancer
	if *enhance {
		chain, err := buildProviderChain(cfg, logger)
		if err != nil {
			return err
		}
		policy := imagegen.DefaultRetryPolicy()
		policy.MaxAttempts = cfg.MaxAttemptsPerProvider
		orch, err := imagegen.NewOrchestrator(chain, policy, logger, nil)
		if err != nil {
			return err
		}
		enhancer = orch
	}

	sink, jobID, finishJob, err := setupJobTracking(ctx, cfg, logger, gardenName, *startDay, *endDay, *images)
	if err != nil {
		return err
	}

	coordinator, err := pipeline.NewCoordinator(pipeline.Deps{
		Catalog:       cat,
		Compositor:    comp,
		Enhancer:      enhancer,
		Store:         store,
		Cache:         pipeline.NewCompositeCache(cfg.CacheTTL),
		Sink:          sink,
		Logger:        logger,
		MaxConcurrent: cfg.MaxConcurrent,
	})
	if err != nil {
		return err
	}

	color.Cyan("Rendering %q, days %d-%d", gardenName, *startDay, *endDay)

	results, runErr := coordinator.Run(ctx, pipeline.Request{
		JobID:             jobID,
		GardenName:        gardenName,
		StartDay:          *startDay,
		EndDay:            *endDay,
		RequestedImages:   *images,
		Year:              *year,
		Layout:            layout,
		Enhance:           *enhance,
		Style:             *style,
		ReferenceStrength: cfg.ReferenceStrength,
	})

	printResults(results)
	finishJob(results, runErr)
	return runErr
}

// loadLayout parses the garden layout YAML into pipeline entries.
func loadLayout(path string) ([]pipeline.LayoutEntry, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read layout %q: %w", path, err)
	}

	var file layoutFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, "", fmt.Errorf("invalid layout YAML %q: %w", path, err)
	}
	if len(file.Entries) == 0 {
		return nil, "", fmt.Errorf("layout %q has no entries", path)
	}
	if file.Garden == "" {
		file.Garden = "garden"
	}

	entries := make([]pipeline.LayoutEntry, 0, len(file.Entries))
	for _, e := range file.Entries {
		dormant := true
		if e.RenderWhenDormant != nil {
			dormant = *e.RenderWhenDormant
		}
		entries = append(entries, pipeline.LayoutEntry{
			PlantID:           e.PlantID,
			GridX:             e.GridX,
			GridY:             e.GridY,
			Scale:             e.Scale,
			RenderWhenDormant: dormant,
		})
	}
	return entries, file.Garden, nil
}

// buildProviderChain constructs providers in configured order, failing
// fast when a listed provider has no API key.
func buildProviderChain(cfg *core.Config, logger *logging.Logger) ([]imagegen.Provider, error) {
	var chain []imagegen.Provider
	for _, name := range cfg.ProviderChain {
		switch name {
		case "openai":
			if cfg.OpenAIAPIKey == "" {
				return nil, core.ErrMissingAuth(name)
			}
			chain = append(chain, imagegen.NewOpenAIProvider(cfg, logger))
		case "stability":
			if cfg.StabilityAPIKey == "" {
				return nil, core.ErrMissingAuth(name)
			}
			chain = append(chain, imagegen.NewStabilityProvider(cfg, logger))
		case "leonardo":
			if cfg.LeonardoAPIKey == "" {
				return nil, core.ErrMissingAuth(name)
			}
			chain = append(chain, imagegen.NewLeonardoProvider(cfg, logger))
		default:
			return nil, core.ErrUnknownProvider(name)
		}
	}
	if len(chain) == 0 {
		return nil, core.ErrMissingConfig("PROVIDER_CHAIN")
	}
	return chain, nil
}

// jobSink persists pipeline status events through the job repository.
type jobSink struct {
	repo   *jobstore.Repository
	jobID  string
	logger *logging.Logger
}

func (s *jobSink) Emit(e pipeline.StatusEvent) {
	err := s.repo.RecordEvent(context.Background(), jobstore.ProgressEvent{
		JobID:     s.jobID,
		DayOfYear: e.DayOfYear,
		Status:    e.Status,
		Provider:  e.Provider,
		Attempt:   e.Attempt,
		Detail:    e.Detail,
	})
	if err != nil {
		s.logger.Warn("failed to persist status event", zap.Error(err))
	}
}

// setupJobTracking opens the job store when configured and returns the
// status sink, the job id, and a finalizer that records the job outcome.
// An empty DATABASE_PATH disables persistence.
func setupJobTracking(ctx context.Context, cfg *core.Config, logger *logging.Logger, gardenName string, startDay, endDay, images int) (pipeline.StatusSink, string, func([]pipeline.DayResult, error), error) {
	if cfg.DatabasePath == "" {
		return pipeline.NopSink{}, "", func([]pipeline.DayResult, error) {}, nil
	}

	db, err := jobstore.Open(cfg.DatabasePath)
	if err != nil {
		return nil, "", nil, err
	}
	if err := jobstore.MigrateUp(db, cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, "", nil, err
	}

	repo := jobstore.NewRepository(db)
	jobID, err := repo.CreateJob(ctx, gardenName, startDay, endDay, images)
	if err != nil {
		db.Close()
		return nil, "", nil, err
	}
	if err := repo.UpdateJobStatus(ctx, jobID, jobstore.JobStatusRunning, ""); err != nil {
		logger.Warn("failed to mark job running", zap.Error(err))
	}

	finish := func(results []pipeline.DayResult, runErr error) {
		defer db.Close()
		status, detail := jobOutcome(results, runErr)
		if err := repo.UpdateJobStatus(context.Background(), jobID, status, detail); err != nil {
			logger.Warn("failed to record job outcome", zap.Error(err))
		}
	}
	return &jobSink{repo: repo, jobID: jobID, logger: logger}, jobID, finish, nil
}

// jobOutcome folds per-day results into a final job status.
func jobOutcome(results []pipeline.DayResult, runErr error) (string, string) {
	if runErr != nil {
		return jobstore.JobStatusFailed, runErr.Error()
	}

	var failed, degraded int
	var lastErr string
	for _, r := range results {
		if r.Err != nil {
			failed++
			lastErr = r.Err.Error()
		} else if r.Degraded {
			degraded++
		}
	}
	switch {
	case failed == len(results) && len(results) > 0:
		return jobstore.JobStatusFailed, lastErr
	case failed > 0 || degraded > 0:
		return jobstore.JobStatusDegraded, lastErr
	default:
		return jobstore.JobStatusCompleted, ""
	}
}

func printResults(results []pipeline.DayResult) {
	for _, r := range results {
		switch {
		case r.Err != nil:
			color.Red("  day %3d  failed: %v", r.DayOfYear, r.Err)
		case r.Degraded:
			color.Yellow("  day %3d  %s  composite only (enhancement unavailable): %s",
				r.DayOfYear, r.Date.Date, r.CompositePath)
		case r.EnhancedPath != "":
			color.Green("  day %3d  %s  %s (via %s)", r.DayOfYear, r.Date.Date, r.EnhancedPath, r.Provider)
		default:
			color.Green("  day %3d  %s  %s", r.DayOfYear, r.Date.Date, r.CompositePath)
		}
		if len(r.BloomingPlants) > 0 {
			fmt.Printf("           in bloom: %v\n", r.BloomingPlants)
		}
	}
}
