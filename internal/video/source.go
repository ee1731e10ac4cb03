// Package video integrates the external frame source: ffprobe for stream
// metadata and ffmpeg for decoding a sampled, resized frame sequence the
// screening pipeline can consume.
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/joysa21/auticareai/internal/config"
)

// ErrSourceUnavailable marks inputs that cannot be opened or decoded. Fatal
// for the video being processed, never retried.
var ErrSourceUnavailable = errors.New("video source unavailable")

// Frame is one sampled image, resized for detection. Data holds packed RGB24
// pixels, Width*Height*3 bytes. Frames are owned transiently by the pipeline
// and never persisted.
type Frame struct {
	Index  int
	Width  int
	Height int
	Data   []byte
}

// Info contains metadata about a video file
type Info struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	VideoCodec string
	HasAudio   bool
}

// Source extracts sampled frames from video files
type Source struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	threads     int
	sampleRate  float64
	frameWidth  int
	frameHeight int
}

// NewSource creates a frame source backed by the ffmpeg binaries
func NewSource(logger zerolog.Logger, ffcfg config.FFmpegConfig, scfg config.ScreeningConfig) (*Source, error) {
	ffmpegPath, err := exec.LookPath(ffcfg.BinaryPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	ffprobePath, err := exec.LookPath(ffcfg.ProbePath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	return &Source{
		logger:      logger.With().Str("component", "frame-source").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		threads:     ffcfg.Threads,
		sampleRate:  scfg.SampleRate,
		frameWidth:  scfg.FrameWidth,
		frameHeight: scfg.FrameHeight,
	}, nil
}

// SampleStep returns the frame skip interval for a capture rate: roughly
// sampleRate frames are kept per second of video, never fewer than every
// frame.
func (s *Source) SampleStep(fps float64) int {
	if s.sampleRate <= 0 {
		return 1
	}
	step := int(fps / s.sampleRate)
	if step < 1 {
		step = 1
	}
	return step
}

// SampleFrames decodes every SampleStep-th frame of the video, scaled to the
// configured detection size. The returned slice preserves capture order.
func (s *Source) SampleFrames(ctx context.Context, filePath string, fps float64) ([]Frame, error) {
	if filePath == "" {
		return nil, fmt.Errorf("%w: file path is required", ErrSourceUnavailable)
	}

	step := s.SampleStep(fps)

	args := []string{
		"-hide_banner", "-loglevel", "error",
	}
	if s.threads > 0 {
		args = append(args, "-threads", fmt.Sprintf("%d", s.threads))
	}
	args = append(args,
		"-i", filePath,
		"-vf", fmt.Sprintf("select=not(mod(n\\,%d)),scale=%d:%d", step, s.frameWidth, s.frameHeight),
		"-fps_mode", "passthrough",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	)

	s.logger.Debug().
		Str("video", filePath).
		Int("step", step).
		Float64("fps", fps).
		Msg("sampling frames")

	cmd := exec.CommandContext(ctx, s.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start ffmpeg: %v", ErrSourceUnavailable, err)
	}

	frameSize := s.frameWidth * s.frameHeight * 3
	var frames []Frame

	for {
		buf := make([]byte, frameSize)
		_, err := io.ReadFull(stdout, buf)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			// Truncated trailing frame, drop it.
			break
		}
		if err != nil {
			_ = cmd.Wait()
			return nil, fmt.Errorf("failed to read frame stream: %w", err)
		}

		frames = append(frames, Frame{
			Index:  len(frames),
			Width:  s.frameWidth,
			Height: s.frameHeight,
			Data:   buf,
		})
	}

	if err := cmd.Wait(); err != nil {
		if len(frames) == 0 {
			return nil, fmt.Errorf("%w: ffmpeg decode failed: %v (%s)",
				ErrSourceUnavailable, err, bytes.TrimSpace(stderr.Bytes()))
		}
		// Partial decode: keep what we have, the tail of the file was bad.
		s.logger.Warn().
			Err(err).
			Int("frames", len(frames)).
			Msg("ffmpeg exited with error after partial decode")
	}

	s.logger.Debug().Int("frames", len(frames)).Msg("frame sampling complete")

	return frames, nil
}
