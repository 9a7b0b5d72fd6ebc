package client

import (
	"context"

	"github.com/miniden/webchat/internal/models"
)

// FaqRoot fetches the top level of the FAQ tree (all items, answers omitted).
func (c *Client) FaqRoot(ctx context.Context) ([]models.FaqItem, error) {
	var items []models.FaqItem
	if err := c.doJSON(ctx, "GET", "/api/faq", nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.FaqItem{}
	}
	return items, nil
}

// FaqCategory fetches the questions belonging to one category.
func (c *Client) FaqCategory(ctx context.Context, category string) ([]models.FaqItem, error) {
	var items []models.FaqItem
	if err := c.doJSON(ctx, "GET", "/api/faq?category="+escapeQuery(category), nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.FaqItem{}
	}
	return items, nil
}

// FaqItem fetches a single FAQ entry with its answer.
func (c *Client) FaqItem(ctx context.Context, id int64) (models.FaqItem, error) {
	var item models.FaqItem
	if err := c.doJSON(ctx, "GET", "/api/faq/"+itoa(id), nil, &item); err != nil {
		return models.FaqItem{}, err
	}
	return item, nil
}
