package faq

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/miniden/webchat/internal/models"
)

// mockClient counts fetches so cache behavior is observable.
type mockClient struct {
	mu            sync.Mutex
	rootCalls     int
	categoryCalls int
	itemCalls     int
	err           error
}

func (m *mockClient) FaqRoot(_ context.Context) ([]models.FaqItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rootCalls++
	if m.err != nil {
		return nil, m.err
	}
	return []models.FaqItem{
		{ID: 1, Category: "Доставка", Question: "q1"},
		{ID: 2, Category: "Доставка", Question: "q2"},
		{ID: 3, Category: "Оплата", Question: "q3"},
	}, nil
}

func (m *mockClient) FaqCategory(_ context.Context, category string) ([]models.FaqItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categoryCalls++
	if m.err != nil {
		return nil, m.err
	}
	return []models.FaqItem{{ID: 1, Category: category, Question: "q1"}}, nil
}

func (m *mockClient) FaqItem(_ context.Context, id int64) (models.FaqItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemCalls++
	if m.err != nil {
		return models.FaqItem{}, m.err
	}
	return models.FaqItem{ID: id, Question: "q", Answer: "a"}, nil
}

func newTestBrowser(t *testing.T, mc *mockClient) *Browser {
	t.Helper()
	b, err := NewBrowser(Opts{Client: mc, TelegramLink: "https://t.me/miniden_support"})
	if err != nil {
		t.Fatalf("new browser: %v", err)
	}
	return b
}

func TestNewBrowser_RequiresClient(t *testing.T) {
	if _, err := NewBrowser(Opts{}); err == nil {
		t.Fatal("expected error for nil client")
	}
}

func TestCategories_DedupesInServerOrder(t *testing.T) {
	b := newTestBrowser(t, &mockClient{})
	cats, err := b.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != 2 || cats[0] != "Доставка" || cats[1] != "Оплата" {
		t.Errorf("categories = %v", cats)
	}
}

func TestCategories_CachedAfterFirstFetch(t *testing.T) {
	mc := &mockClient{}
	b := newTestBrowser(t, mc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := b.Categories(ctx); err != nil {
			t.Fatalf("categories: %v", err)
		}
	}
	if mc.rootCalls != 1 {
		t.Errorf("root fetches = %d, want 1", mc.rootCalls)
	}
}

func TestQuestions_CachedPerCategory(t *testing.T) {
	mc := &mockClient{}
	b := newTestBrowser(t, mc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := b.Questions(ctx, "Доставка"); err != nil {
			t.Fatalf("questions: %v", err)
		}
	}
	if _, err := b.Questions(ctx, "Оплата"); err != nil {
		t.Fatalf("questions: %v", err)
	}
	if mc.categoryCalls != 2 {
		t.Errorf("category fetches = %d, want 2 (one per category)", mc.categoryCalls)
	}
}

func TestAnswer_CachedByID(t *testing.T) {
	mc := &mockClient{}
	b := newTestBrowser(t, mc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		item, err := b.Answer(ctx, 7)
		if err != nil {
			t.Fatalf("answer: %v", err)
		}
		if item.Answer != "a" {
			t.Errorf("answer = %q", item.Answer)
		}
	}
	if mc.itemCalls != 1 {
		t.Errorf("item fetches = %d, want 1", mc.itemCalls)
	}
}

func TestFetchErrorNotCached(t *testing.T) {
	mc := &mockClient{err: fmt.Errorf("boom")}
	b := newTestBrowser(t, mc)
	ctx := context.Background()

	if _, err := b.Categories(ctx); err == nil {
		t.Fatal("expected error")
	}

	// A failed fetch must not poison the cache: the next call retries.
	mc.mu.Lock()
	mc.err = nil
	mc.mu.Unlock()
	cats, err := b.Categories(ctx)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(cats) == 0 {
		t.Error("no categories after retry")
	}
}

func TestTelegramLink_AlwaysAvailable(t *testing.T) {
	b := newTestBrowser(t, &mockClient{err: fmt.Errorf("backend down")})
	if b.TelegramLink() != "https://t.me/miniden_support" {
		t.Errorf("telegram link = %q", b.TelegramLink())
	}
}
