// Package pipeline orchestrates a screening run: frame sampling, per-frame
// detection, signal classification, temporal aggregation, risk scoring and
// report assembly. Data flows strictly forward through those stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/joysa21/auticareai/internal/detector"
	"github.com/joysa21/auticareai/internal/report"
	"github.com/joysa21/auticareai/internal/screening"
	"github.com/joysa21/auticareai/internal/video"
)

// Pipeline runs the behavioral screening workflow for single videos and
// batches. The detector handle is acquired once at construction and released
// by the owner; independent pipelines can run concurrently without shared
// state.
type Pipeline struct {
	logger   zerolog.Logger
	config   *Config
	source   FrameSource
	detector detector.Detector
}

// New creates a pipeline around an opened frame source and detector handle
func New(logger zerolog.Logger, cfg *Config, source FrameSource, det detector.Detector) *Pipeline {
	if cfg == nil {
		cfg = &Config{Workers: 4}
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return &Pipeline{
		logger:   logger.With().Str("component", "pipeline").Logger(),
		config:   cfg,
		source:   source,
		detector: det,
	}
}

// Screen runs the full screening pipeline on one video
func (p *Pipeline) Screen(ctx context.Context, input string) (*report.Report, error) {
	metrics, err := p.ExtractMetrics(ctx, input)
	if err != nil {
		return nil, err
	}

	risk := screening.Score(metrics)
	rep := report.Assemble(metrics, risk, input)

	p.logger.Info().
		Str("input", input).
		Str("risk_level", rep.RiskAssessment.Level).
		Float64("confidence", rep.RiskAssessment.Confidence).
		Msg("screening complete")

	return rep, nil
}

// ExtractMetrics runs the pipeline up to aggregation, without risk scoring.
// A failed video yields an error and no metrics; partial results are never
// returned.
func (p *Pipeline) ExtractMetrics(ctx context.Context, input string) (screening.BehavioralMetrics, error) {
	var none screening.BehavioralMetrics

	if input == "" {
		return none, fmt.Errorf("input path cannot be empty")
	}

	p.logger.Info().Str("input", input).Msg("starting screening pipeline")

	// Stage 1: probe video metadata
	info, err := p.source.Probe(ctx, input)
	if err != nil {
		return none, fmt.Errorf("failed to probe video: %w", err)
	}

	p.logger.Info().
		Dur("duration", info.Duration).
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("fps", info.FPS).
		Msg("video metadata extracted")

	// Stage 2: sample frames
	frames, err := p.source.SampleFrames(ctx, input, info.FPS)
	if err != nil {
		return none, fmt.Errorf("failed to sample frames: %w", err)
	}
	if len(frames) == 0 {
		return none, screening.ErrEmptyInput
	}

	p.logger.Info().Int("frames", len(frames)).Msg("frames sampled")

	// Stage 3: per-frame detection, parallel across frames
	results, err := p.detectFrames(ctx, frames)
	if err != nil {
		return none, err
	}

	// Stage 4: classification, strictly in capture order
	classifier := screening.NewClassifier(screening.DefaultClassifierConfig())
	signals := make([]screening.FrameSignals, len(results))
	for i, res := range results {
		signals[i] = classifier.Classify(res)
	}

	// Stage 5: temporal aggregation
	metrics, err := screening.Aggregate(signals, len(signals), info.FPS)
	if err != nil {
		return none, fmt.Errorf("failed to aggregate signals: %w", err)
	}

	p.logger.Info().
		Float64("eye_contact", metrics.EyeContactDuration).
		Float64("attention_shifts", metrics.AttentionShifts).
		Float64("gesture_frequency", metrics.GestureFrequency).
		Float64("social_gaze", metrics.SocialGaze).
		Float64("response_latency", metrics.ResponseLatency).
		Msg("behavioral metrics extracted")

	return metrics, nil
}

// detectFrames maps the detector over all frames with a bounded worker pool,
// folding results back into capture order. Detector faults degrade to "no
// detection this frame" and never abort the video.
func (p *Pipeline) detectFrames(ctx context.Context, frames []video.Frame) ([]screening.DetectorResult, error) {
	results := make([]screening.DetectorResult, len(frames))

	workers := p.config.Workers
	if workers > len(frames) {
		workers = len(frames)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				res, err := p.detector.Detect(ctx, frames[i])
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return
					}
					p.logger.Warn().
						Err(err).
						Int("frame", i).
						Msg("detector fault, treating frame as no detection")
					continue
				}
				results[i] = res
			}
		}()
	}

	for i := range frames {
		select {
		case indexes <- i:
		case <-ctx.Done():
			close(indexes)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(indexes)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
