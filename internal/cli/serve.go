package cli

import (
	"github.com/spf13/cobra"

	"github.com/htrtools/pageconv/internal/server"
	"github.com/htrtools/pageconv/pkg/cache"
	"github.com/htrtools/pageconv/pkg/pipeline"
)

// serveFlags holds the flags for the serve command.
type serveFlags struct {
	addr    string
	noCache bool
}

// newServeCmd creates the serve command for the HTTP conversion service.
func newServeCmd() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion service",
		Long: `Serve conversions over HTTP. POST a PAGE XML document to /convert and
receive the converted document back. With [serve.redis] configured the
service shares its result cache across instances via Redis; otherwise it
uses the local file cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (default \":8650\")")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func runServe(cmd *cobra.Command, flags *serveFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	backend := newCache(cfg, flags.noCache)
	if !flags.noCache && cfg.Serve.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Serve.Redis.Addr,
			Password: cfg.Serve.Redis.Password,
			DB:       cfg.Serve.Redis.DB,
		})
		if err != nil {
			logger.Warn("redis unavailable, using local cache", "addr", cfg.Serve.Redis.Addr, "err", err)
		} else {
			backend.Close()
			backend = rc
		}
	}

	runner := pipeline.NewRunner(backend, logger)
	defer runner.Close()

	addr := flags.addr
	if addr == "" {
		addr = cfg.serveAddr()
	}

	srv := server.New(runner, logger, pipeline.Options{Transform: cfg.transformOptions()})
	logger.Info("serving", "addr", addr)
	return srv.Run(ctx, addr)
}
