package api

import (
	"context"

	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/models"
)

// ProductReviews lists the reviews of a product
func (c *Client) ProductReviews(ctx context.Context, productID string, page, limit int) (*Page[models.Review], error) {
	return fetchPage[models.Review](ctx, c, public(get(pathf("/api/reviews/product/%s", productID), pageQuery(page, limit))), "reviews")
}

// MyReview returns the user's review of a product, or nil if there is none
func (c *Client) MyReview(ctx context.Context, productID string) (*models.Review, error) {
	review, err := fetch[models.Review](ctx, c, get(pathf("/api/reviews/product/%s/mine", productID), nil), "review")
	if clierrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if review.ID == "" {
		return nil, nil
	}
	return review, nil
}

// CreateReview reviews a purchased product. The answer may offer rewards.
func (c *Client) CreateReview(ctx context.Context, req models.ReviewRequest) (*models.ReviewResult, error) {
	res, err := c.do(ctx, post("/api/reviews", req))
	if err != nil {
		return nil, err
	}

	out := &models.ReviewResult{}
	if err := res.decode("", out); err != nil {
		return nil, err
	}
	if out.Review.ID == "" {
		// bare review without the rewards wrapper
		if err := res.decode("", &out.Review); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateReview edits a review
func (c *Client) UpdateReview(ctx context.Context, id string, req models.ReviewRequest) (*models.Review, error) {
	return fetch[models.Review](ctx, c, put(pathf("/api/reviews/%s", id), req), "review")
}

// DeleteReview removes a review
func (c *Client) DeleteReview(ctx context.Context, id string) error {
	_, err := c.do(ctx, del(pathf("/api/reviews/%s", id)))
	return err
}
