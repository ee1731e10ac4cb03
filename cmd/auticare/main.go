package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/joysa21/auticareai/internal/config"
	"github.com/joysa21/auticareai/internal/detector"
	"github.com/joysa21/auticareai/internal/logging"
	"github.com/joysa21/auticareai/internal/pipeline"
	"github.com/joysa21/auticareai/internal/quality"
	"github.com/joysa21/auticareai/internal/report"
	"github.com/joysa21/auticareai/internal/screening"
	"github.com/joysa21/auticareai/internal/server"
	"github.com/joysa21/auticareai/internal/store"
	"github.com/joysa21/auticareai/internal/video"
	"github.com/joysa21/auticareai/pkg/util"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "auticare",
	Short: "AutiCare AI - behavioral video screening toolkit",
	Long:  "Screens recorded play/interaction videos for early autism-related behavioral markers and produces structured risk reports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(qualityCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(baselinesCmd)
	rootCmd.AddCommand(configCmd)
}

// buildPipeline wires the frame source and detector worker into a pipeline.
// The returned closer shuts the detector subprocess down.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	source, err := video.NewSource(log.Logger, cfg.FFmpeg, cfg.Screening)
	if err != nil {
		return nil, nil, err
	}

	worker, err := detector.NewWorker(log.Logger, cfg.Detector)
	if err != nil {
		return nil, nil, err
	}

	pipeCfg := &pipeline.Config{Workers: cfg.Concurrency}
	pipe := pipeline.New(log.Logger, pipeCfg, source, worker)

	closer := func() {
		if err := worker.Close(); err != nil {
			log.Warn().Err(err).Msg("detector worker did not shut down cleanly")
		}
	}
	return pipe, closer, nil
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [input video]",
	Short: "Screen a video and print a readable summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, closer, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		defer closer()

		rep, err := pipe.Screen(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printReport(rep)
		return nil
	},
}

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report [input video]",
	Short: "Screen a video and emit the report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, closer, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		defer closer()

		rep, err := pipe.Screen(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if err := publishReport(cmd.Context(), cfg, rep); err != nil {
			return err
		}

		if reportOut != "" {
			sink := report.FileSink{Path: reportOut}
			if err := sink.Write(cmd.Context(), rep); err != nil {
				return err
			}
			log.Info().Str("path", reportOut).Msg("report written")
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	},
}

var batchOutDir string

var batchCmd = &cobra.Command{
	Use:   "batch [videos or directories...]",
	Short: "Screen multiple videos, writing one report per input",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		inputs, err := collectVideos(args)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return fmt.Errorf("no video files found in %s", strings.Join(args, ", "))
		}

		if err := util.EnsureDir(batchOutDir); err != nil {
			return err
		}

		pipe, closer, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		defer closer()

		bar := progressbar.NewOptions(len(inputs),
			progressbar.OptionSetDescription("screening"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)

		items := pipe.ScreenBatch(cmd.Context(), inputs, func(item pipeline.BatchItem) {
			bar.Add(1)
		})
		fmt.Fprintln(os.Stderr)

		failures := 0
		for _, item := range items {
			if item.Err != nil {
				failures++
				log.Error().Err(item.Err).Str("input", item.Source).Msg("screening failed")
				continue
			}

			out := filepath.Join(batchOutDir, item.Report.ID+".json")
			sink := report.FileSink{Path: out}
			if err := sink.Write(cmd.Context(), item.Report); err != nil {
				failures++
				log.Error().Err(err).Str("input", item.Source).Msg("failed to write report")
				continue
			}

			if err := publishReport(cmd.Context(), cfg, item.Report); err != nil {
				log.Warn().Err(err).Str("input", item.Source).Msg("failed to publish report")
			}

			fmt.Printf("%s: %s (confidence %.2f) -> %s\n",
				item.Source, item.Report.RiskAssessment.Level, item.Report.RiskAssessment.Confidence, out)
		}

		log.Info().
			Int("total", len(items)).
			Int("failed", failures).
			Msg("batch complete")

		if failures > 0 {
			return fmt.Errorf("%d of %d videos failed", failures, len(items))
		}
		return nil
	},
}

var qualityCmd = &cobra.Command{
	Use:   "quality [input video]",
	Short: "Check whether a video is suitable for screening",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		source, err := video.NewSource(log.Logger, cfg.FFmpeg, cfg.Screening)
		if err != nil {
			return err
		}

		// Face coverage is checked only when the detector worker starts;
		// the remaining diagnostics work without it.
		var det detector.Detector
		if worker, err := detector.NewWorker(log.Logger, cfg.Detector); err == nil {
			det = worker
			defer worker.Close()
		} else {
			log.Warn().Err(err).Msg("detector unavailable, skipping face coverage check")
		}

		checker := quality.NewChecker(log.Logger, source, det)
		res, err := checker.Check(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Resolution:  %dx%d\n", res.Info.Width, res.Info.Height)
		fmt.Printf("Duration:    %.1fs\n", res.Info.Duration.Seconds())
		fmt.Printf("Brightness:  %.0f\n", res.MeanBrightness)
		if res.FaceRateKnown {
			fmt.Printf("Face rate:   %.0f%%\n", res.FaceRate*100)
		}

		if len(res.Issues) == 0 {
			fmt.Println("\nNo quality issues found.")
			return nil
		}

		fmt.Println("\nIssues:")
		for i, issue := range res.Issues {
			fmt.Printf("  - %s\n    recommendation: %s\n", issue, res.Recommendations[i])
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the screening HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, closer, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		defer closer()

		var st *store.Store
		if cfg.Database.URL != "" {
			st, err = store.New(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("failed to connect to report store: %w", err)
			}
			defer st.Close(context.Background())
			log.Info().Msg("report store connected")
		}

		srv := server.New(log.Logger, cfg.Server, pipe, st)
		return srv.Run()
	},
}

var baselinesCmd = &cobra.Command{
	Use:   "baselines",
	Short: "Print the neurotypical baseline values",
	RunE: func(cmd *cobra.Command, args []string) error {
		baselines := map[string]float64{
			"eye_contact_duration": screening.EyeContactBaseline,
			"attention_shifts":     screening.AttentionShiftsBaseline,
			"gesture_frequency":    screening.GestureFrequencyBaseline,
			"social_gaze":          screening.SocialGazeBaseline,
			"response_latency":     screening.ResponseLatencyBaseline,
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(baselines)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		cfg := config.FromContext(cmd.Context())
		if err := cfg.Save(path); err != nil {
			return err
		}

		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "write report JSON to file instead of stdout")
	batchCmd.Flags().StringVarP(&batchOutDir, "out-dir", "o", "reports", "directory for report JSON files")
	configCmd.AddCommand(configInitCmd)
}

// collectVideos expands directory arguments into the video files they contain
func collectVideos(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			inputs = append(inputs, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() && util.IsVideoFile(entry.Name()) {
				inputs = append(inputs, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return inputs, nil
}

// publishReport sends the report to the MQTT broker when one is configured
func publishReport(ctx context.Context, cfg *config.Config, rep *report.Report) error {
	if cfg.MQTT.Broker == "" {
		return nil
	}

	sink := report.NewMQTTSink(log.Logger, cfg.MQTT)
	if err := sink.Connect(ctx); err != nil {
		return err
	}
	defer sink.Close()

	return sink.Write(ctx, rep)
}

func printReport(rep *report.Report) {
	signals := rep.Metrics.ObjectiveSignals

	fmt.Printf("Screening report %s\n", rep.ID)
	fmt.Printf("Source: %s\n\n", rep.Source)
	fmt.Printf("Risk level: %s (confidence %.2f)\n", rep.RiskAssessment.Level, rep.RiskAssessment.Confidence)
	fmt.Printf("%s\n\n", rep.RiskAssessment.Description)

	rows := []struct {
		name   string
		signal report.Signal
	}{
		{"Eye contact duration", signals.EyeContactDuration},
		{"Attention shifts", signals.AttentionShifts},
		{"Gesture frequency", signals.GestureFrequency},
		{"Social gaze", signals.SocialGaze},
		{"Response latency", signals.ResponseLatency},
	}
	for _, row := range rows {
		fmt.Printf("  %-22s %10s  (baseline %s, %s)\n",
			row.name, row.signal.Value, row.signal.Baseline, row.signal.Status)
	}
}
