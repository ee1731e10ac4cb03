// Package quality diagnoses video-quality issues that degrade screening
// accuracy: low resolution, short duration, poor lighting, missing faces.
package quality

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog"

	"github.com/joysa21/auticareai/internal/detector"
	"github.com/joysa21/auticareai/internal/video"
)

// FrameSource is the checker's view of the video decoder
type FrameSource interface {
	Probe(ctx context.Context, filePath string) (*video.Info, error)
	SampleFrames(ctx context.Context, filePath string, fps float64) ([]video.Frame, error)
}

// Thresholds below which a diagnostic issue is raised
const (
	minWidth      = 640
	minHeight     = 480
	minDuration   = 10 * time.Second
	darkLuma      = 50.0
	brightLuma    = 200.0
	minFaceRate   = 0.5
	badLightRatio = 0.3
)

// Result summarizes the diagnostics for one video
type Result struct {
	Info             *video.Info
	FramesSampled    int
	MeanBrightness   float64
	DarkFrameRatio   float64
	BrightFrameRatio float64
	FaceRate         float64
	FaceRateKnown    bool
	Issues           []string
	Recommendations  []string
}

// Checker runs quality diagnostics. The detector is optional: without one,
// face coverage is not assessed.
type Checker struct {
	logger   zerolog.Logger
	source   FrameSource
	detector detector.Detector
}

func NewChecker(logger zerolog.Logger, source FrameSource, det detector.Detector) *Checker {
	return &Checker{
		logger:   logger.With().Str("component", "quality").Logger(),
		source:   source,
		detector: det,
	}
}

// Check probes the video and analyzes a sampled subset of frames
func (c *Checker) Check(ctx context.Context, input string) (*Result, error) {
	info, err := c.source.Probe(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to probe video: %w", err)
	}

	res := &Result{Info: info}

	if info.Width < minWidth || info.Height < minHeight {
		res.addIssue(
			fmt.Sprintf("low resolution (%dx%d) may affect face detection", info.Width, info.Height),
			"use higher resolution video (720p or better)")
	}
	if info.Duration < minDuration {
		res.addIssue(
			fmt.Sprintf("video too short (%.1fs)", info.Duration.Seconds()),
			"use longer videos for more accurate analysis (30-60 seconds)")
	}

	frames, err := c.source.SampleFrames(ctx, input, info.FPS)
	if err != nil {
		return nil, fmt.Errorf("failed to sample frames: %w", err)
	}
	res.FramesSampled = len(frames)
	if len(frames) == 0 {
		res.addIssue("no frames could be decoded", "re-encode the video or try a different file")
		return res, nil
	}

	c.analyzeLighting(frames, res)
	c.analyzeFaceCoverage(ctx, frames, res)

	c.logger.Info().
		Int("frames", res.FramesSampled).
		Float64("mean_brightness", res.MeanBrightness).
		Int("issues", len(res.Issues)).
		Msg("quality check complete")

	return res, nil
}

func (c *Checker) analyzeLighting(frames []video.Frame, res *Result) {
	var total float64
	var dark, bright int

	for _, frame := range frames {
		luma := frameLuma(frame)
		total += luma
		if luma < darkLuma {
			dark++
		} else if luma > brightLuma {
			bright++
		}
	}

	n := float64(len(frames))
	res.MeanBrightness = total / n
	res.DarkFrameRatio = float64(dark) / n
	res.BrightFrameRatio = float64(bright) / n

	if res.DarkFrameRatio > badLightRatio {
		res.addIssue("video is too dark in large portions", "record in better lighting conditions")
	}
	if res.BrightFrameRatio > badLightRatio {
		res.addIssue("video is overexposed in large portions", "avoid direct light into the camera")
	}
}

func (c *Checker) analyzeFaceCoverage(ctx context.Context, frames []video.Frame, res *Result) {
	if c.detector == nil {
		return
	}

	found := 0
	for _, frame := range frames {
		det, err := c.detector.Detect(ctx, frame)
		if err != nil {
			continue
		}
		if det.FacePresent {
			found++
		}
	}

	res.FaceRate = float64(found) / float64(len(frames))
	res.FaceRateKnown = true

	if res.FaceRate < minFaceRate {
		res.addIssue(
			fmt.Sprintf("face visible in only %.0f%% of sampled frames", res.FaceRate*100),
			"keep the subject's face in view of the camera")
	}
}

func (r *Result) addIssue(issue, recommendation string) {
	r.Issues = append(r.Issues, issue)
	r.Recommendations = append(r.Recommendations, recommendation)
}

// frameLuma computes the mean luma of a frame. Frames are downscaled first so
// the cost stays flat regardless of detection size.
func frameLuma(frame video.Frame) float64 {
	img := toImage(frame)
	small := resize.Resize(160, 0, img, resize.Bilinear)

	bounds := small.Bounds()
	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := small.At(x, y).RGBA()
			// 8-bit channel weights for ITU-R BT.601 luma.
			total += 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}

	pixels := float64(bounds.Dx() * bounds.Dy())
	if pixels == 0 {
		return 0
	}
	return total / pixels
}

// toImage wraps a packed RGB24 frame in an image.RGBA
func toImage(frame video.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for i := 0; i < frame.Width*frame.Height; i++ {
		img.Pix[i*4+0] = frame.Data[i*3+0]
		img.Pix[i*4+1] = frame.Data[i*3+1]
		img.Pix[i*4+2] = frame.Data[i*3+2]
		img.Pix[i*4+3] = 0xFF
	}
	return img
}
