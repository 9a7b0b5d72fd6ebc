package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/miniden/webchat/internal/client"
	"github.com/miniden/webchat/internal/faq"
)

func newFaqCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "faq [category]",
		Short: "Browse the support FAQ",
		Long:  "Lists FAQ categories, the questions of one category, or a single answer via `faq show <id>`.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := ""
			if len(args) == 1 {
				category = args[0]
			}
			return runFaqList(cmd, configPath, category)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to webchat config file")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one FAQ answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid faq id %q", args[0])
			}
			return runFaqShow(cmd, configPath, id)
		},
	})
	return cmd
}

// newBrowser builds the FAQ browser from config.
func newBrowser(configPath string) (*faq.Browser, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	cl, err := client.New(client.Opts{BaseURL: cfg.BaseURL, Timeout: cfg.HTTPTimeout()})
	if err != nil {
		return nil, err
	}
	return faq.NewBrowser(faq.Opts{Client: cl, TelegramLink: cfg.TelegramLink})
}

func runFaqList(cmd *cobra.Command, configPath, category string) error {
	b, err := newBrowser(configPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	ctx := context.Background()

	if category == "" {
		cats, err := b.Categories(ctx)
		if err != nil {
			printFaqError(cmd, b)
			return err
		}
		if len(cats) == 0 {
			fmt.Fprintln(out, "FAQ пока пуст.")
			return nil
		}
		fmt.Fprintln(out, "Категории:")
		for _, c := range cats {
			fmt.Fprintf(out, "  %s\n", c)
		}
		fmt.Fprintln(out, "\nВопросы: webchat faq <категория>")
		return nil
	}

	items, err := b.Questions(ctx, category)
	if err != nil {
		printFaqError(cmd, b)
		return err
	}
	if len(items) == 0 {
		fmt.Fprintf(out, "В категории %q вопросов нет.\n", category)
		return nil
	}
	for _, it := range items {
		fmt.Fprintf(out, "  [%d] %s\n", it.ID, it.Question)
	}
	fmt.Fprintln(out, "\nОтвет: webchat faq show <id>")
	return nil
}

func runFaqShow(cmd *cobra.Command, configPath string, id int64) error {
	b, err := newBrowser(configPath)
	if err != nil {
		return err
	}
	item, err := b.Answer(context.Background(), id)
	if err != nil {
		printFaqError(cmd, b)
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n\n%s\n", item.Question, item.Answer)
	return nil
}

// printFaqCategories lists the FAQ categories, used by the chat loop's /faq
// command.
func printFaqCategories(cmd *cobra.Command, b *faq.Browser) {
	out := cmd.OutOrStdout()
	cats, err := b.Categories(context.Background())
	if err != nil {
		printFaqError(cmd, b)
		return
	}
	if len(cats) == 0 {
		fmt.Fprintln(out, "FAQ пока пуст.")
		return
	}
	fmt.Fprintln(out, "Категории FAQ:")
	for _, c := range cats {
		fmt.Fprintf(out, "  %s\n", c)
	}
	fmt.Fprintln(out, "Вопросы: webchat faq <категория>")
}

// printFaqError renders the static FAQ error panel: fixed text plus the
// always-available Telegram escape hatch.
func printFaqError(cmd *cobra.Command, b *faq.Browser) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Не удалось загрузить FAQ. Попробуйте позже.")
	if link := b.TelegramLink(); link != "" {
		fmt.Fprintf(out, "Связаться в Telegram: %s\n", link)
	}
}
