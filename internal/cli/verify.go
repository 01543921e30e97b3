package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/veracity/internal/extract"
	"github.com/ppiankov/veracity/internal/log"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/pipeline"
	"github.com/ppiankov/veracity/internal/store"
)

var (
	claimsPath     string
	transcriptPath string
	videoTitle     string
	videoURL       string
	channel        string
	outJSON        string
	runTimeout     time.Duration
	llmProvider    string
	llmModel       string
	storePath      string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the claims made in one video",
	Long: `Verify scores, selects and verifies a video's claims, then writes the
report as JSON and prints a short summary.

Claims come from the extraction service's JSON output (--claims) or are
pulled out of a transcript (--transcript).

Example:
  veracity verify --claims claims.json
  veracity verify --transcript talk.txt --video-title "Why I Trust Vitalix" --channel "Wellness Daily"
  veracity verify --claims claims.json --llm-provider anthropic --out report.json`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	// Input flags
	verifyCmd.Flags().StringVar(&claimsPath, "claims", "", "extraction output (JSON claims file)")
	verifyCmd.Flags().StringVar(&transcriptPath, "transcript", "", "transcript file (plain text or HTML)")
	verifyCmd.Flags().StringVar(&videoTitle, "video-title", "", "video title (overrides the claims file)")
	verifyCmd.Flags().StringVar(&videoURL, "video-url", "", "video URL")
	verifyCmd.Flags().StringVar(&channel, "channel", "", "channel name for the reputation lookup")

	// Output flags
	verifyCmd.Flags().StringVar(&outJSON, "out", "", "output JSON path (default from config)")
	verifyCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Minute, "overall run timeout")

	// Overrides
	verifyCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, google, ollama)")
	verifyCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	verifyCmd.Flags().StringVar(&storePath, "store", "", "run history database (default from config)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	if (claimsPath == "") == (transcriptPath == "") {
		return errors.New("exactly one of --claims or --transcript is required")
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)

	video := model.Video{Title: videoTitle, URL: videoURL, Channel: channel}
	var ex extract.Extractor
	if claimsPath != "" {
		jx := extract.NewJSONExtractor(claimsPath)
		set, err := jx.Load()
		if err != nil {
			return err
		}
		video = mergeVideo(set.Video, video)
		ex = extract.Static(set.Claims)
	} else {
		ex = extract.NewTranscriptExtractor(transcriptPath)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		p.WithStore(st)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	log.Info("Verifying claims for %q", video.Title)
	report, err := p.RunExtractor(ctx, video, ex)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if cfg.Output.JSONPath != "" {
		if err := pipeline.WriteJSON(report, cfg.Output.JSONPath); err != nil {
			return err
		}
		log.Info("Report written to %s", cfg.Output.JSONPath)
	}
	pipeline.WriteSummary(cmd.OutOrStdout(), report)
	return nil
}

// applyRunFlags lets explicitly set flags win over config and environment
func applyRunFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Output.JSONPath = outJSON
	}
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if flags.Changed("store") {
		cfg.Store.Path = storePath
	}
	cfg.Output.Verbose = verbose
}

// mergeVideo fills the claims file's video metadata from non-empty flags
func mergeVideo(base, override model.Video) model.Video {
	if override.Title != "" {
		base.Title = override.Title
	}
	if override.URL != "" {
		base.URL = override.URL
	}
	if override.Channel != "" {
		base.Channel = override.Channel
	}
	return base
}
