package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/William2207/uteshop/cli/pkg/client"
	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/models"
)

// ListProducts lists the catalogue. Browsing needs no login.
func (c *Client) ListProducts(ctx context.Context, q models.ProductQuery) (*Page[models.Product], error) {
	logger.Debug("Listing products", "page", q.Page, "sort", q.Sort, "category", q.Category)

	query := pageQuery(q.Page, q.Limit)
	setIf(query, "sort", q.Sort)
	setIf(query, "category", q.Category)
	setIf(query, "search", q.Search)
	setIf(query, "minPrice", q.MinPrice)
	setIf(query, "maxPrice", q.MaxPrice)

	return fetchPage[models.Product](ctx, c, public(get("/api/products", query)), "products")
}

// NewArrivals lists the newest products
func (c *Client) NewArrivals(ctx context.Context, limit int) (*Page[models.Product], error) {
	return c.ListProducts(ctx, models.ProductQuery{Sort: "newest", Limit: limit})
}

// HomeBlocks fetches the landing page product groups
func (c *Client) HomeBlocks(ctx context.Context) (*models.HomeBlocks, error) {
	return fetch[models.HomeBlocks](ctx, c, public(get("/api/products/home-blocks", nil)), "")
}

// GetProduct fetches one product
func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	logger.Debug("Fetching product", "product_id", id)
	return fetch[models.Product](ctx, c, public(get(pathf("/api/products/%s", id), nil)), "product")
}

// RecordView counts a product page view
func (c *Client) RecordView(ctx context.Context, id string) error {
	_, err := c.do(ctx, public(post(pathf("/api/products/%s/view", id), nil)))
	return err
}

// SimilarProducts lists products related to id
func (c *Client) SimilarProducts(ctx context.Context, id string, limit int) ([]models.Product, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	page, err := fetchPage[models.Product](ctx, c, public(get(pathf("/api/products/%s/similar", id), query)), "products")
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func public(r client.Request) client.Request {
	r.Public = true
	return r
}
