package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/veracity/internal/log"
	"github.com/ppiankov/veracity/internal/pipeline"
	"github.com/ppiankov/veracity/internal/server"
	"github.com/ppiankov/veracity/internal/store"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring and verification API",
	Long: `Serve exposes the engine over HTTP:

  GET  /healthz
  POST /v1/score     {"claims": [{"claim_text": ...}]}
  POST /v1/verify    {"video": {...}, "claims": [...]}
  GET  /v1/runs      run history (requires store.path)
  GET  /v1/runs/:id`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&storePath, "store", "", "run history database (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if cmd.Flags().Changed("store") {
		cfg.Store.Path = storePath
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	var history server.History
	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		p.WithStore(st)
		history = st
	} else {
		log.Warn("No store.path configured; run history endpoints are disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(p, history).ListenAndServe(ctx, cfg.Server.Addr)
}
