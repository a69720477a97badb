// Package pipeline coordinates the per-day visualization chain: calendar
// selection, bloom annotation, sprite compositing, and optional
// photorealistic enhancement through the provider orchestrator.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"garden_backend/bloom"
	"garden_backend/calendar"
	"garden_backend/catalog"
	"garden_backend/compositor"
	"garden_backend/imagegen"
	"garden_backend/logging"
)

// DefaultMaxConcurrent bounds how many day chains run at once.
const DefaultMaxConcurrent = 3

// LayoutEntry places one catalog plant on the logical grid.
type LayoutEntry struct {
	PlantID           string
	GridX             float64
	GridY             float64
	Scale             float64
	RenderWhenDormant bool
}

// Request describes one visualization run.
type Request struct {
	JobID           string
	GardenName      string
	StartDay        int
	EndDay          int
	RequestedImages int // <= 0 uses the range-derived default
	Year            int // 0 uses the current year
	Layout          []LayoutEntry
	Enhance         bool
	Style           string

	// ReferenceStrength is how strongly enhanced output follows the
	// composite, 0..1; 0 uses the provider default.
	ReferenceStrength float64
}

// DayResult is the outcome for one selected day. A day that composited but
// could not be enhanced is Degraded, not failed.
type DayResult struct {
	DayOfYear      int
	Date           calendar.SelectedDay
	BloomingPlants []string
	CompositePath  string
	EnhancedPath   string
	Provider       string
	Degraded       bool
	Err            error
}

// Enhancer re-renders a composite photorealistically. Satisfied by
// *imagegen.Orchestrator.
type Enhancer interface {
	GenerateFromReferenceObserved(ctx context.Context, req imagegen.ReferenceRequest, obs imagegen.AttemptObserver) ([]byte, string, error)
}

// ImageStore persists image bytes. Satisfied by *imagegen.ContentStore.
type ImageStore interface {
	Save(subject, variant string, data []byte, ext string) (string, error)
}

// Deps are the collaborators a Coordinator is built from. Catalog,
// Compositor, and Store are required; Enhancer is required only when
// requests ask for enhancement; nil Cache, Sink, and Logger get inert
// defaults.
type Deps struct {
	Catalog       *catalog.Catalog
	Compositor    *compositor.Compositor
	Enhancer      Enhancer
	Store         ImageStore
	Cache         *CompositeCache
	Sink          StatusSink
	Logger        *logging.Logger
	MaxConcurrent int
}

// Coordinator fans a visualization request out into independent per-day
// chains with bounded concurrency.
//
// Thread Safety: safe for concurrent Run calls.
type Coordinator struct {
	catalog       *catalog.Catalog
	compositor    *compositor.Compositor
	enhancer      Enhancer
	store         ImageStore
	cache         *CompositeCache
	sink          StatusSink
	logger        *logging.Logger
	maxConcurrent int
}

// NewCoordinator validates dependencies and builds a Coordinator.
func NewCoordinator(deps Deps) (*Coordinator, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("pipeline: catalog is required")
	}
	if deps.Compositor == nil {
		return nil, fmt.Errorf("pipeline: compositor is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("pipeline: image store is required")
	}
	if deps.Cache == nil {
		deps.Cache = NewCompositeCache(0)
	}
	if deps.Sink == nil {
		deps.Sink = NopSink{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.MaxConcurrent <= 0 {
		deps.MaxConcurrent = DefaultMaxConcurrent
	}

	return &Coordinator{
		catalog:       deps.Catalog,
		compositor:    deps.Compositor,
		enhancer:      deps.Enhancer,
		store:         deps.Store,
		cache:         deps.Cache,
		sink:          deps.Sink,
		logger:        deps.Logger.Named("pipeline"),
		maxConcurrent: deps.MaxConcurrent,
	}, nil
}

// Run executes the request and returns one result per selected day,
// ordered by position in the selected-day sequence. Structural errors (bad
// day range, enhancement requested without an enhancer) fail the whole
// run; a single day failing does not abort its siblings. On cancellation
// the finished results are returned alongside the context error.
func (c *Coordinator) Run(ctx context.Context, req Request) ([]DayResult, error) {
	dayRange, err := calendar.CalculateDayRange(req.StartDay, req.EndDay)
	if err != nil {
		return nil, err
	}
	if req.Enhance && c.enhancer == nil {
		return nil, fmt.Errorf("pipeline: enhancement requested but no enhancer configured")
	}

	year := req.Year
	if year == 0 {
		year = time.Now().Year()
	}

	days := calendar.SelectDaysForImages(dayRange, req.RequestedImages)
	c.logger.Info("run started",
		zap.String("garden", req.GardenName),
		zap.Int("start_day", dayRange.StartDay),
		zap.Int("end_day", dayRange.EndDay),
		zap.Ints("selected_days", days),
		zap.Bool("enhance", req.Enhance),
	)

	results := make([]DayResult, len(days))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)

	for i, day := range days {
		i, day := i, day
		g.Go(func() error {
			// Day failures land in the result; only cancellation crosses
			// goroutines.
			results[i] = c.renderDay(gctx, req, day, year)
			return nil
		})
	}
	// Closures never return an error.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (c *Coordinator) renderDay(ctx context.Context, req Request, dayOfYear, year int) DayResult {
	result := DayResult{DayOfYear: dayOfYear}
	c.emit(req.JobID, dayOfYear, StatusQueued, "", 0, "")

	if err := ctx.Err(); err != nil {
		result.Err = err
		c.emit(req.JobID, dayOfYear, StatusFailed, "", 0, "cancelled")
		return result
	}

	info, err := calendar.DayToDateInfo(dayOfYear, year)
	if err != nil {
		result.Err = err
		c.emit(req.JobID, dayOfYear, StatusFailed, "", 0, err.Error())
		return result
	}
	result.Date = info
	result.BloomingPlants = bloom.PlantsBloomingOnDay(c.layoutPlants(req.Layout), dayOfYear)

	png, err := c.compositeForDay(req, dayOfYear, info.Season)
	if err != nil {
		result.Err = err
		c.emit(req.JobID, dayOfYear, StatusFailed, "", 0, err.Error())
		c.logger.Error("composite failed",
			zap.Int("day_of_year", dayOfYear),
			zap.Error(err),
		)
		return result
	}

	path, err := c.store.Save(req.GardenName, fmt.Sprintf("day-%d-composite", dayOfYear), png, "png")
	if err != nil {
		result.Err = err
		c.emit(req.JobID, dayOfYear, StatusFailed, "", 0, err.Error())
		return result
	}
	result.CompositePath = path

	if !req.Enhance {
		c.emit(req.JobID, dayOfYear, StatusCompleted, "", 0, "")
		return result
	}

	c.enhanceDay(ctx, req, &result, info, png)
	return result
}

// compositeForDay returns the composite PNG for a day, consulting the
// cache first. The cache key carries garden, day, and season so catalog
// edits between runs at most serve one stale TTL window.
func (c *Coordinator) compositeForDay(req Request, dayOfYear int, season calendar.Season) ([]byte, error) {
	key := fmt.Sprintf("%s:%d:%s", req.GardenName, dayOfYear, season)
	if png, ok := c.cache.Get(key); ok {
		c.logger.Debug("composite cache hit", zap.String("key", key))
		return png, nil
	}

	positions := c.buildPositions(req.Layout, dayOfYear, season)
	composed, err := c.compositor.CompositeGarden(positions)
	if err != nil {
		return nil, err
	}

	c.cache.Put(key, composed.PNG)
	return composed.PNG, nil
}

// layoutPlants resolves the layout's plant IDs against the catalog, one
// plant per distinct ID. Bloom annotation describes the garden as placed,
// so catalog plants absent from the layout never reach the results or the
// enhancement prompt.
func (c *Coordinator) layoutPlants(layout []LayoutEntry) []bloom.Plant {
	seen := make(map[string]bool, len(layout))
	plants := make([]bloom.Plant, 0, len(layout))
	for _, entry := range layout {
		if seen[entry.PlantID] {
			continue
		}
		seen[entry.PlantID] = true
		if plant, ok := c.catalog.Plant(entry.PlantID); ok {
			plants = append(plants, plant)
		}
	}
	return plants
}

// buildPositions resolves layout entries against the catalog for one day.
// Entries whose plant or sprite cannot be resolved are skipped; dormant
// plants are skipped when the entry opts out of dormant rendering. The
// returned slice is ordered back-to-front (larger gridY is nearer the
// viewer, so it draws later and stacks on top).
func (c *Coordinator) buildPositions(layout []LayoutEntry, dayOfYear int, season calendar.Season) []compositor.PlantPosition {
	positions := make([]compositor.PlantPosition, 0, len(layout))

	for _, entry := range layout {
		plant, ok := c.catalog.Plant(entry.PlantID)
		if !ok {
			c.logger.Warn("layout references unknown plant", zap.String("plant_id", entry.PlantID))
			continue
		}

		inBloom := bloom.IsBloomingOnDay(plant, dayOfYear)
		if !inBloom && !entry.RenderWhenDormant {
			continue
		}

		ref, ok := c.catalog.SpriteRef(entry.PlantID, season, inBloom)
		if !ok {
			c.logger.Warn("no sprite for plant in season",
				zap.String("plant_id", entry.PlantID),
				zap.String("season", string(season)),
			)
			continue
		}

		positions = append(positions, compositor.PlantPosition{
			SpriteRef: ref,
			GridX:     entry.GridX,
			GridY:     entry.GridY,
			Scale:     entry.Scale,
			Label:     plant.DisplayName(),
		})
	}

	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].GridY < positions[j].GridY
	})
	return positions
}

func (c *Coordinator) enhanceDay(ctx context.Context, req Request, result *DayResult, info calendar.SelectedDay, composite []byte) {
	prompt := imagegen.BuildEnhancementPrompt(imagegen.PromptInput{
		Season:         string(info.Season),
		Date:           humanDate(info),
		BloomingPlants: result.BloomingPlants,
		GardenName:     req.GardenName,
		Style:          req.Style,
	})

	observer := func(rec imagegen.AttemptRecord) {
		if rec.State == imagegen.StateAttempting {
			c.emit(req.JobID, result.DayOfYear, StatusGenerating, rec.Provider, rec.Attempt, "")
		}
	}

	data, provider, err := c.enhancer.GenerateFromReferenceObserved(ctx, imagegen.ReferenceRequest{
		Image:    composite,
		Prompt:   prompt,
		Strength: req.ReferenceStrength,
	}, observer)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			result.Err = err
			c.emit(req.JobID, result.DayOfYear, StatusFailed, "", 0, "cancelled")
			return
		}
		// The composite still stands on its own; the day degrades instead
		// of failing.
		result.Degraded = true
		c.emit(req.JobID, result.DayOfYear, StatusCompleted, "", 0, err.Error())
		c.logger.Warn("enhancement unavailable, keeping composite",
			zap.Int("day_of_year", result.DayOfYear),
			zap.Error(err),
		)
		return
	}

	path, err := c.store.Save(req.GardenName, fmt.Sprintf("day-%d-enhanced", result.DayOfYear), data, "png")
	if err != nil {
		result.Degraded = true
		c.emit(req.JobID, result.DayOfYear, StatusCompleted, provider, 0, err.Error())
		return
	}
	result.EnhancedPath = path
	result.Provider = provider
	c.emit(req.JobID, result.DayOfYear, StatusCompleted, provider, 0, "")
}

func (c *Coordinator) emit(jobID string, dayOfYear int, status, provider string, attempt int, detail string) {
	c.sink.Emit(StatusEvent{
		JobID:     jobID,
		DayOfYear: dayOfYear,
		Status:    status,
		Provider:  provider,
		Attempt:   attempt,
		Detail:    detail,
		At:        time.Now(),
	})
}

// humanDate renders "June 15" from a SelectedDay for prompt building.
func humanDate(d calendar.SelectedDay) string {
	return fmt.Sprintf("%s %d", time.Month(d.Month).String(), d.DayOfMonth)
}
