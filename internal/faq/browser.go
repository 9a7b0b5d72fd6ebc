// Package faq implements the read-only FAQ browser that shares the support
// panel with the chat widget: categories → questions → answer, each level
// lazily fetched and cached so repeat navigation avoids redundant requests.
package faq

import (
	"context"
	"fmt"
	"sync"

	"github.com/miniden/webchat/internal/models"
)

// Client is the subset of the backend API the browser needs.
type Client interface {
	FaqRoot(ctx context.Context) ([]models.FaqItem, error)
	FaqCategory(ctx context.Context, category string) ([]models.FaqItem, error)
	FaqItem(ctx context.Context, id int64) (models.FaqItem, error)
}

// Browser caches the FAQ tree in memory. Entries never expire: the tree
// changes rarely and the widget lives at most one page view.
type Browser struct {
	client       Client
	telegramLink string

	mu         sync.RWMutex
	byCategory map[string][]models.FaqItem // key "" holds the root listing
	byID       map[int64]models.FaqItem
}

// Opts holds parameters for creating a Browser.
type Opts struct {
	Client       Client
	TelegramLink string // escape hatch shown alongside any FAQ error
}

// NewBrowser creates a Browser.
func NewBrowser(opts Opts) (*Browser, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("faq: client is required")
	}
	return &Browser{
		client:       opts.Client,
		telegramLink: opts.TelegramLink,
		byCategory:   make(map[string][]models.FaqItem),
		byID:         make(map[int64]models.FaqItem),
	}, nil
}

// TelegramLink returns the external support link. It is static and usable
// regardless of any fetch error state.
func (b *Browser) TelegramLink() string {
	return b.telegramLink
}

// Categories returns the distinct FAQ categories in server order.
func (b *Browser) Categories(ctx context.Context) ([]string, error) {
	items, err := b.root(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(items))
	var cats []string
	for _, it := range items {
		if it.Category == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		cats = append(cats, it.Category)
	}
	return cats, nil
}

// Questions returns the items of one category, fetching on first access.
func (b *Browser) Questions(ctx context.Context, category string) ([]models.FaqItem, error) {
	if category == "" {
		return b.root(ctx)
	}

	b.mu.RLock()
	cached, ok := b.byCategory[category]
	b.mu.RUnlock()
	if ok {
		return cached, nil
	}

	items, err := b.client.FaqCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("faq: category %q: %w", category, err)
	}
	b.mu.Lock()
	b.byCategory[category] = items
	b.mu.Unlock()
	return items, nil
}

// Answer returns one FAQ entry with its answer, fetching on first access.
func (b *Browser) Answer(ctx context.Context, id int64) (models.FaqItem, error) {
	b.mu.RLock()
	cached, ok := b.byID[id]
	b.mu.RUnlock()
	if ok {
		return cached, nil
	}

	item, err := b.client.FaqItem(ctx, id)
	if err != nil {
		return models.FaqItem{}, fmt.Errorf("faq: item %d: %w", id, err)
	}
	b.mu.Lock()
	b.byID[id] = item
	b.mu.Unlock()
	return item, nil
}

// root returns the top-level listing, fetching on first access.
func (b *Browser) root(ctx context.Context) ([]models.FaqItem, error) {
	b.mu.RLock()
	cached, ok := b.byCategory[""]
	b.mu.RUnlock()
	if ok {
		return cached, nil
	}

	items, err := b.client.FaqRoot(ctx)
	if err != nil {
		return nil, fmt.Errorf("faq: root listing: %w", err)
	}
	b.mu.Lock()
	b.byCategory[""] = items
	b.mu.Unlock()
	return items, nil
}
