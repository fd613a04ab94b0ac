package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/William2207/uteshop/cli/pkg/formatter"
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/William2207/uteshop/cli/pkg/output"
	"github.com/William2207/uteshop/cli/pkg/validate"
)

// ReviewService reads and writes product reviews
type ReviewService struct {
	rt *Runtime
}

// NewReviewService creates a new review service
func NewReviewService(rt *Runtime) *ReviewService {
	return &ReviewService{rt: rt}
}

// List prints a page of reviews for a product
func (s *ReviewService) List(ctx context.Context, productID string, page, limit int) error {
	if err := requireArg("product id", productID); err != nil {
		return err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	res, err := s.rt.API.ProductReviews(ctx, productID, page, limit)
	if err != nil {
		return err
	}
	if len(res.Items) == 0 {
		output.PrintInfo("No reviews yet")
		return nil
	}

	headers := []string{"ID", "Rating", "By", "Date", "Comment"}
	rows := make([][]string, 0, len(res.Items))
	for _, r := range res.Items {
		by := ""
		if r.User != nil {
			by = r.User.Name
		}
		rows = append(rows, []string{r.ID, formatter.Stars(float64(r.Rating)), by, formatter.Date(r.CreatedAt), formatter.Truncate(r.Comment, 60)})
	}
	if err := output.PrintTable(headers, rows, pageData(res)); err != nil {
		return err
	}
	printPagination(res.Pagination)
	return nil
}

// Mine prints the signed-in user's review of a product
func (s *ReviewService) Mine(ctx context.Context, productID string) error {
	if err := requireArg("product id", productID); err != nil {
		return err
	}
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}

	r, err := s.rt.API.MyReview(ctx, productID)
	if err != nil {
		return err
	}
	if r == nil {
		output.PrintInfo("You have not reviewed this product")
		return nil
	}
	return printReview(r)
}

// Create posts a review. Rating and comment are prompted for when missing,
// and any reward the server offers can be claimed right away.
func (s *ReviewService) Create(ctx context.Context, productID string, rating int, comment string) error {
	if err := requireArg("product id", productID); err != nil {
		return err
	}
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}

	req, err := s.promptReview(models.ReviewRequest{ProductID: productID, Rating: rating, Comment: comment})
	if err != nil {
		return err
	}

	res, err := s.rt.API.CreateReview(ctx, req)
	if err != nil {
		return err
	}
	output.PrintSuccess("✓ Review posted")

	if len(res.Rewards) == 0 || output.GetOutputFormat() == output.FormatJSON {
		return nil
	}
	return s.claimReward(ctx, res.Rewards)
}

// Update edits an existing review
func (s *ReviewService) Update(ctx context.Context, id string, rating int, comment string) error {
	if err := requireArg("review id", id); err != nil {
		return err
	}
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}

	req, err := s.promptReview(models.ReviewRequest{Rating: rating, Comment: comment})
	if err != nil {
		return err
	}
	if _, err := s.rt.API.UpdateReview(ctx, id, req); err != nil {
		return err
	}
	output.PrintSuccess("✓ Review updated")
	return nil
}

// Delete removes a review
func (s *ReviewService) Delete(ctx context.Context, id string) error {
	if err := requireArg("review id", id); err != nil {
		return err
	}
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	if err := s.rt.API.DeleteReview(ctx, id); err != nil {
		return err
	}
	output.PrintSuccess("✓ Review deleted")
	return nil
}

func (s *ReviewService) promptReview(req models.ReviewRequest) (models.ReviewRequest, error) {
	p := s.rt.Prompter
	var err error
	if req.Rating == 0 {
		if req.Rating, err = p.Int("Rating (1-5): "); err != nil {
			return req, err
		}
	}
	if req.Comment == "" {
		if req.Comment, err = p.Multiline("Comment", 20); err != nil {
			return req, err
		}
	}
	return req, validate.Struct(req)
}

func (s *ReviewService) claimReward(ctx context.Context, rewards []models.RewardOffer) error {
	options := make([]string, 0, len(rewards)+1)
	for _, r := range rewards {
		options = append(options, rewardLabel(r))
	}
	options = append(options, "Skip")

	idx, err := s.rt.Prompter.Select("Claim a reward for your review:", options)
	if err != nil {
		return err
	}
	if idx == len(rewards) {
		return nil
	}

	r := rewards[idx]
	msg, err := s.rt.API.ClaimReward(ctx, models.ClaimRewardRequest{
		RewardType:  r.Type,
		VoucherCode: r.VoucherCode,
		Value:       r.Value,
	})
	if err != nil {
		return err
	}
	output.PrintSuccess("✓ %s", orDefault(msg, "Reward claimed"))
	return nil
}

func rewardLabel(r models.RewardOffer) string {
	if r.Label != "" {
		return r.Label
	}
	if r.VoucherCode != "" {
		return "Voucher " + r.VoucherCode
	}
	return fmt.Sprintf("%d points", r.Value)
}

func printReview(r *models.Review) error {
	fields := []output.Field{
		{Key: "ID", Value: r.ID},
		{Key: "Rating", Value: formatter.Stars(float64(r.Rating)) + " " + strconv.Itoa(r.Rating) + "/5"},
		{Key: "Comment", Value: r.Comment},
	}
	if d := formatter.Date(r.CreatedAt); d != "" {
		fields = append(fields, output.Field{Key: "Date", Value: d})
	}
	return output.PrintRecord("", fields, r)
}
