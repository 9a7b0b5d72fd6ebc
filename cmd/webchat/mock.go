package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/miniden/webchat/internal/mockserver"
)

func newMockCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Run the development mock backend",
		Long:  "Serves an in-memory webchat backend (sessions, messages, FAQ fixture) for developing the client without the real API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMock(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to webchat config file")
	return cmd
}

func runMock(cmd *cobra.Command, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	srv, err := mockserver.New(mockserver.Opts{
		Port:           cfg.Mock.Port,
		AutoReply:      cfg.Mock.AutoReply,
		AutoReplyDelay: cfg.Mock.AutoReplyDelay(),
		CloseCron:      cfg.Mock.CloseCron,
		Out:            cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
