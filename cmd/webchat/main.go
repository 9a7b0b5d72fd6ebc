package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/miniden/webchat/internal/config"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webchat",
		Short: "MiniDeN support chat — terminal client",
		Long:  "Webchat is the MiniDeN support widget for the terminal: live chat with support, FAQ browsing, and a local mock backend for development.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newFaqCmd())
	cmd.AddCommand(newMockCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "webchat %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// loadConfig resolves configuration: an explicit path, else webchat.yaml in
// the working directory, else defaults. Env overrides apply in every case.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat("webchat.yaml"); err == nil {
		return config.Load("webchat.yaml")
	}
	return config.Default()
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	_ = godotenv.Load()
	os.Exit(execute(newRootCmd()))
}
