package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joysa21/auticareai/pkg/util"
)

// Sink delivers a fully assembled report to a destination
type Sink interface {
	Write(ctx context.Context, rep *Report) error
}

// FileSink writes reports as indented JSON files
type FileSink struct {
	Path string
}

func (s FileSink) Write(ctx context.Context, rep *Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := util.EnsureParentDir(s.Path); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
