package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/miniden/webchat/internal/client"
	"github.com/miniden/webchat/internal/faq"
	"github.com/miniden/webchat/internal/session"
	"github.com/miniden/webchat/internal/widget"
)

func newChatCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start a live support chat",
		Long:  "Opens a chat session with MiniDeN support and polls for replies. Type messages and press Enter; /faq lists the FAQ, /quit exits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to webchat config file")
	return cmd
}

func runChat(cmd *cobra.Command, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("chat requires an interactive terminal")
	}

	cl, err := client.New(client.Opts{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.HTTPTimeout(),
	})
	if err != nil {
		return err
	}

	store := session.Open(cfg.StatePath)
	if !store.Persistent() {
		fmt.Fprintln(cmd.OutOrStdout(), "(локальное хранилище недоступно — сессия не переживёт перезапуск)")
	}

	out := cmd.OutOrStdout()
	renderer := newChatRenderer(out, cfg.TelegramLink)
	w, err := widget.New(widget.Opts{
		Backend:      cl,
		Keys:         store,
		Page:         cfg.Page,
		PollInterval: cfg.PollInterval(),
		MessageLimit: cfg.MessageLimit,
		OnState:      renderer.Render,
	})
	if err != nil {
		return err
	}
	defer w.Dispose()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := w.OpenChat(ctx); err != nil {
		// The renderer already showed the user-facing text; keep the CLI
		// alive so the user can retry by sending a message.
		fmt.Fprintln(out, "(повторим попытку при следующем сообщении)")
	}

	browser, err := faq.NewBrowser(faq.Opts{Client: cl, TelegramLink: cfg.TelegramLink})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Введите сообщение. /faq — справка, /quit — выход.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			w.ClosePanel()
			return nil
		case "/faq":
			w.SwitchToFAQ()
			printFaqCategories(cmd, browser)
			continue
		}

		// Implicit retry: if the panel is in FAQ mode or the handshake never
		// completed, reopen chat before sending, mirroring the widget's
		// retry-on-next-user-action rule.
		if st := w.Snapshot(); st.Mode != widget.ModeChat || st.Phase != widget.PhaseActive {
			if err := w.OpenChat(ctx); err != nil {
				continue
			}
		}

		if err := w.SendMessage(ctx, line); err != nil {
			if errors.Is(err, widget.ErrSessionClosed) {
				fmt.Fprintln(out, "— Чат закрыт, отправка недоступна.")
				if cfg.TelegramLink != "" {
					fmt.Fprintf(out, "  Связаться в Telegram: %s\n", cfg.TelegramLink)
				}
				continue
			}
			return err
		}
	}
	w.ClosePanel()
	return scanner.Err()
}
