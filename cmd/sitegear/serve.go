package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sitegear/sitegear"
)

const defaultAddress = ":8080"

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve the site over HTTP",
		Long: `Serve the site until SIGINT or SIGTERM.

Backends follow the configuration: database.url enables PostgreSQL stores and
River jobs, cache.driver enables the page cache, mailer.resend.api-key enables
email and storage selects local or S3 file storage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v)
		},
	}
	cmd.Flags().String("addr", "", "listen address; overrides site.address (default "+defaultAddress+")")
	cmd.Flags().Bool("watch", false, "reload config/site.* when it changes")
	return cmd
}

func runServe(ctx context.Context, v *viper.Viper) error {
	s, err := openSite(v)
	if err != nil {
		return err
	}
	e, err := s.engine(ctx)
	if err != nil {
		return errors.Join(err, s.close(ctx))
	}

	addr := v.GetString("addr")
	if addr == "" {
		addr = s.config.String("site.address", defaultAddress)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if v.GetBool("watch") {
		w := s.watcher()
		go func() {
			if err := w.Start(ctx); err != nil {
				s.logger.Error("configuration watcher stopped", slog.Any("error", err))
			}
		}()
	}

	opts := []sitegear.RunOption{sitegear.WithContext(ctx)}
	for _, hook := range s.hooks {
		opts = append(opts, sitegear.ShutdownHook(hook))
	}
	s.logger.Info("serving site",
		slog.String("root", s.root),
		slog.String("env", s.env),
		slog.String("addr", addr),
	)
	return e.Run(addr, opts...)
}
