package ai

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/metrics"
	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=images_mocks_test.go -package=ai_test

const (
	exerciseImageStyle = "Photorealistic, professional fitness demonstration with proper form on neutral background"
	foodImageStyle     = "Photorealistic, appetizing food photography with natural lighting on white plate"

	defaultMaxConcurrentImages = 5
	imageCacheExpireSeconds    = int((24 * time.Hour) / time.Second)
)

type imageGenerator interface {
	GenerateImage(ctx context.Context, model, prompt string) (string, error)
}

type ImageDecoratorParams struct {
	Enabled        bool
	Model          string
	MaxConcurrent  int
	CacheBytes     int
	Generator      imageGenerator
	MetricsManager *metrics.Manager
}

// ImageDecorator adds generated illustrations to plan exercises and meals.
type ImageDecorator struct {
	enabled        bool
	model          string
	maxConcurrent  int
	generator      imageGenerator
	cache          *freecache.Cache
	metricsManager *metrics.Manager
}

type DecorateStats struct {
	Total      int
	Successful int
	Failed     int
}

func NewImageDecorator(params ImageDecoratorParams) *ImageDecorator {
	maxConcurrent := params.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentImages
	}
	cacheBytes := params.CacheBytes
	if cacheBytes <= 0 {
		cacheBytes = 32 * 1024 * 1024
	}

	return &ImageDecorator{
		enabled:        params.Enabled,
		model:          params.Model,
		maxConcurrent:  maxConcurrent,
		generator:      params.Generator,
		cache:          freecache.NewCache(cacheBytes),
		metricsManager: params.MetricsManager,
	}
}

type imageRequest struct {
	prompt string
	target *string
}

// Decorate sets imageBase64 on every exercise and meal it can get an image for.
// Image failures are logged and skipped, the plan is always usable afterwards.
func (d *ImageDecorator) Decorate(ctx context.Context, plan *WeeklyPlan) DecorateStats {
	if !d.enabled || plan == nil {
		return DecorateStats{}
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "ai.images.decorate")
	defer span.End()

	requests := collectImageRequests(plan)
	log.Debugf("decorating plan with %d images", len(requests))

	var successful atomic.Int32
	g := errgroup.Group{}
	g.SetLimit(d.maxConcurrent)
	for _, req := range requests {
		g.Go(func() error {
			image, err := d.image(ctx, req.prompt)
			if err != nil {
				d.metricsManager.CounterAIFailures.WithLabelValues("image").Inc()
				log.Warnf("generate image [%.40s]: %s", req.prompt, err)
				return nil
			}
			*req.target = image
			successful.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	stats := DecorateStats{
		Total:      len(requests),
		Successful: int(successful.Load()),
	}
	stats.Failed = stats.Total - stats.Successful
	log.Debugf("plan images done: %d total, %d successful, %d failed", stats.Total, stats.Successful, stats.Failed)
	return stats
}

func (d *ImageDecorator) image(ctx context.Context, prompt string) (string, error) {
	cacheKey := []byte(d.model + "::" + prompt)
	if cached, err := d.cache.Get(cacheKey); err == nil {
		log.Tracef("image for [%.40s] found in cache", prompt)
		return string(cached), nil
	}

	image, err := d.generator.GenerateImage(ctx, d.model, prompt)
	if err != nil {
		return "", err
	}

	if err := d.cache.Set(cacheKey, []byte(image), imageCacheExpireSeconds); err != nil {
		log.Debugf("cache image for [%.40s]: %s", prompt, err)
	}
	return image, nil
}

// collectImageRequests walks the days in weekday order so the request order is stable.
func collectImageRequests(plan *WeeklyPlan) []imageRequest {
	var requests []imageRequest
	for _, weekday := range Weekdays {
		day, ok := plan.WeeklyPlan[weekday]
		if !ok {
			continue
		}
		// slices share their backing arrays with the plan, so the pointers reach the plan items
		for i := range day.Workout.Exercises {
			exercise := &day.Workout.Exercises[i]
			if exercise.Name == "" {
				continue
			}
			requests = append(requests, imageRequest{
				prompt: "Exercise demonstration of " + exercise.Name + ". Style: " + exerciseImageStyle,
				target: &exercise.ImageBase64,
			})
		}
		for i := range day.Diet.MealsList {
			meal := &day.Diet.MealsList[i]
			if meal.Description == "" {
				continue
			}
			requests = append(requests, imageRequest{
				prompt: "Food photograph of " + meal.Description + ". Style: " + foodImageStyle,
				target: &meal.ImageBase64,
			})
		}
	}
	return requests
}
