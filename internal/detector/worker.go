package detector

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"

	"github.com/joysa21/auticareai/internal/config"
	"github.com/joysa21/auticareai/internal/screening"
	"github.com/joysa21/auticareai/internal/video"
)

const maxResponseLine = 1 << 20

// Worker runs the detector as a subprocess speaking newline-delimited JSON:
// one request per frame on stdin, one Landmarks response per line on stdout.
// Requests are serialized through a mutex, so a Worker is safe to share
// across pipeline goroutines.
type Worker struct {
	logger zerolog.Logger
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Scanner

	mu  sync.Mutex
	seq uint64
}

type workerRequest struct {
	FrameData string `json:"frame_data"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Seq       uint64 `json:"seq"`
}

// NewWorker launches the configured detector worker process
func NewWorker(logger zerolog.Logger, cfg config.DetectorConfig) (*Worker, error) {
	if len(cfg.Command) == 0 {
		return nil, fmt.Errorf("detector command is not configured")
	}

	cmd := exec.Command(cfg.Command[0], cfg.Command[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("detector worker failed to start: %w", err)
	}

	w := &Worker{
		logger: logger.With().Str("component", "detector-worker").Logger(),
		cmd:    cmd,
		stdin:  stdin,
	}

	w.stdout = bufio.NewScanner(stdout)
	w.stdout.Buffer(make([]byte, 64*1024), maxResponseLine)

	// Surface worker diagnostics without letting them interleave with results.
	go w.logStderr(stderr)

	w.logger.Debug().Strs("command", cfg.Command).Msg("detector worker started")

	return w, nil
}

// Detect sends one frame to the worker and normalizes its response
func (w *Worker) Detect(ctx context.Context, frame video.Frame) (screening.DetectorResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return screening.DetectorResult{}, err
	}

	w.seq++
	req := workerRequest{
		FrameData: base64.StdEncoding.EncodeToString(frame.Data),
		Width:     frame.Width,
		Height:    frame.Height,
		Seq:       w.seq,
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return screening.DetectorResult{}, fmt.Errorf("%w: encode request: %v", ErrDetectorFault, err)
	}
	payload = append(payload, '\n')

	if _, err := w.stdin.Write(payload); err != nil {
		return screening.DetectorResult{}, fmt.Errorf("%w: worker unreachable: %v", ErrDetectorFault, err)
	}

	if !w.stdout.Scan() {
		if err := w.stdout.Err(); err != nil {
			return screening.DetectorResult{}, fmt.Errorf("%w: read response: %v", ErrDetectorFault, err)
		}
		return screening.DetectorResult{}, fmt.Errorf("%w: worker closed its output", ErrDetectorFault)
	}

	var lm Landmarks
	if err := json.Unmarshal(w.stdout.Bytes(), &lm); err != nil {
		return screening.DetectorResult{}, fmt.Errorf("%w: malformed response: %v", ErrDetectorFault, err)
	}

	if lm.Error != "" {
		return screening.DetectorResult{}, fmt.Errorf("%w: %s", ErrDetectorFault, lm.Error)
	}

	return resultFromLandmarks(lm), nil
}

// Close shuts the worker down: closing stdin signals the process to exit
func (w *Worker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.stdin.Close(); err != nil {
		return err
	}
	if w.cmd != nil {
		return w.cmd.Wait()
	}
	return nil
}

func (w *Worker) logStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		w.logger.Debug().Str("worker", scanner.Text()).Msg("detector stderr")
	}
}
