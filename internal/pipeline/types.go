package pipeline

import (
	"context"

	"github.com/joysa21/auticareai/internal/report"
	"github.com/joysa21/auticareai/internal/video"
)

// FrameSource is the pipeline's view of the external video decoder
type FrameSource interface {
	Probe(ctx context.Context, filePath string) (*video.Info, error)
	SampleFrames(ctx context.Context, filePath string, fps float64) ([]video.Frame, error)
}

// Config holds pipeline-specific configuration
type Config struct {
	// Workers bounds how many frames are detected concurrently. Detection is
	// an independent map step; classification always runs in capture order.
	Workers int
}

// BatchItem is the outcome of one video within a batch screening
type BatchItem struct {
	Source string
	Report *report.Report
	Err    error
}
