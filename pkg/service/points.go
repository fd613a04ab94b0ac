package service

import (
	"context"
	"strconv"

	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/formatter"
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/William2207/uteshop/cli/pkg/output"
	"github.com/William2207/uteshop/cli/pkg/validate"
	"github.com/shopspring/decimal"
)

// PointsService shows and spends loyalty points
type PointsService struct {
	rt *Runtime
}

// NewPointsService creates a new points service
func NewPointsService(rt *Runtime) *PointsService {
	return &PointsService{rt: rt}
}

// History prints the user's point transactions
func (s *PointsService) History(ctx context.Context, page, limit int) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	page, limit = normalizePage(page, limit)

	res, err := s.rt.API.PointHistory(ctx, page, limit)
	if err != nil {
		return err
	}
	if user := s.rt.Session.State().User; user != nil && output.GetOutputFormat() != output.FormatJSON {
		output.PrintInfo("Balance: %d points", user.Points)
	}
	if len(res.Items) == 0 {
		output.PrintInfo("No point transactions yet")
		return nil
	}
	if err := printPointTransactions(res.Items, pageData(res), false); err != nil {
		return err
	}
	printPagination(res.Pagination)
	return nil
}

// Config prints the loyalty program rules
func (s *PointsService) Config(ctx context.Context) error {
	cfg, err := s.rt.API.PointsConfig(ctx)
	if err != nil {
		return err
	}
	return printPointsConfig(cfg)
}

// Redeem spends points against amount and prints the resulting discount
func (s *PointsService) Redeem(ctx context.Context, points int, amount decimal.Decimal) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}
	req := models.PointsRedeemRequest{Points: points, OrderAmount: amount}
	if err := validate.Struct(req); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return clierrors.ValidationError("amount", "must be positive")
	}

	res, err := s.rt.API.RedeemPoints(ctx, req)
	if err != nil {
		return err
	}
	if st := s.rt.Session.State(); st.User != nil {
		user := *st.User
		user.Points = res.Balance
		s.rt.Session.SetUser(&user)
	}

	output.PrintSuccess("✓ Redeemed %d point%s", res.PointsUsed, pluralize(res.PointsUsed))
	return output.PrintRecord("", []output.Field{
		{Key: "Discount", Value: formatter.Money(res.DiscountAmount)},
		{Key: "Balance", Value: res.Balance},
	}, res)
}

// AdminCustomers lists customers with their balances
func (s *PointsService) AdminCustomers(ctx context.Context, page, limit int, search string) error {
	if err := s.rt.RequireAdmin(ctx); err != nil {
		return err
	}
	page, limit = normalizePage(page, limit)

	res, err := s.rt.API.AdminPointCustomers(ctx, page, limit, search)
	if err != nil {
		return err
	}
	if len(res.Items) == 0 {
		output.PrintInfo("No customers found")
		return nil
	}

	headers := []string{"User", "Name", "Email", "Balance", "Earned", "Spent"}
	rows := make([][]string, 0, len(res.Items))
	for _, c := range res.Items {
		rows = append(rows, []string{
			c.User.ID, c.User.Name, c.User.Email,
			strconv.Itoa(c.Balance), strconv.Itoa(c.TotalEarned), strconv.Itoa(c.TotalSpent),
		})
	}
	if err := output.PrintTable(headers, rows, pageData(res)); err != nil {
		return err
	}
	printPagination(res.Pagination)
	return nil
}

// AdminTransactions lists transactions of all users, or of userID
func (s *PointsService) AdminTransactions(ctx context.Context, page, limit int, userID string) error {
	if err := s.rt.RequireAdmin(ctx); err != nil {
		return err
	}
	page, limit = normalizePage(page, limit)

	res, err := s.rt.API.AdminPointTransactions(ctx, page, limit, userID)
	if err != nil {
		return err
	}
	if len(res.Items) == 0 {
		output.PrintInfo("No point transactions")
		return nil
	}
	if err := printPointTransactions(res.Items, pageData(res), true); err != nil {
		return err
	}
	printPagination(res.Pagination)
	return nil
}

// AdminAdjust records a transaction against a customer's balance
func (s *PointsService) AdminAdjust(ctx context.Context, req models.AdminPointTransactionRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if err := s.rt.RequireAdmin(ctx); err != nil {
		return err
	}
	tx, err := s.rt.API.CreatePointTransaction(ctx, req)
	if err != nil {
		return err
	}
	output.PrintSuccess("✓ %s %+d points for %s", tx.Type, tx.Points, req.UserID)
	return nil
}

// AdminStats prints the loyalty summary
func (s *PointsService) AdminStats(ctx context.Context) error {
	if err := s.rt.RequireAdmin(ctx); err != nil {
		return err
	}
	stats, err := s.rt.API.PointsStats(ctx)
	if err != nil {
		return err
	}
	return output.PrintRecord("Loyalty points", []output.Field{
		{Key: "Issued", Value: stats.TotalIssued},
		{Key: "Redeemed", Value: stats.TotalRedeemed},
		{Key: "Outstanding", Value: stats.OutstandingPts},
		{Key: "Active members", Value: stats.ActiveMembers},
	}, stats)
}

// AdminSetConfig replaces the program rules. Zero fields keep the current
// value.
func (s *PointsService) AdminSetConfig(ctx context.Context, update models.PointsConfig) error {
	if err := s.rt.RequireAdmin(ctx); err != nil {
		return err
	}
	cfg, err := s.rt.API.PointsConfig(ctx)
	if err != nil {
		return err
	}

	if !update.PointsPerAmount.IsZero() {
		cfg.PointsPerAmount = update.PointsPerAmount
	}
	if !update.AmountPerPoint.IsZero() {
		cfg.AmountPerPoint = update.AmountPerPoint
	}
	if update.MaxRedeemPercent != 0 {
		cfg.MaxRedeemPercent = update.MaxRedeemPercent
	}
	if update.ExpiryDays != 0 {
		cfg.ExpiryDays = update.ExpiryDays
	}
	if cfg.MaxRedeemPercent < 0 || cfg.MaxRedeemPercent > 100 {
		return clierrors.ValidationError("maxRedeemPercent", "must be between 0 and 100")
	}

	saved, err := s.rt.API.UpdatePointsConfig(ctx, *cfg)
	if err != nil {
		return err
	}
	output.PrintSuccess("✓ Points config updated")
	return printPointsConfig(saved)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func printPointsConfig(cfg *models.PointsConfig) error {
	return output.PrintRecord("Loyalty program", []output.Field{
		{Key: "Earn", Value: "1 point per " + formatter.Money(cfg.PointsPerAmount)},
		{Key: "Redeem", Value: "1 point = " + formatter.Money(cfg.AmountPerPoint)},
		{Key: "Max per order", Value: strconv.Itoa(cfg.MaxRedeemPercent) + "%"},
		{Key: "Expiry", Value: strconv.Itoa(cfg.ExpiryDays) + " days"},
	}, cfg)
}

func printPointTransactions(txs []models.PointTransaction, data interface{}, admin bool) error {
	headers := []string{"Date", "Type", "Points", "Description"}
	if admin {
		headers = append([]string{"User"}, headers...)
	}

	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		pts := strconv.Itoa(tx.Points)
		switch tx.Type {
		case models.PointsEarned:
			pts = formatter.Success.Sprint("+" + pts)
		case models.PointsRedeemed, models.PointsExpired:
			pts = formatter.Error.Sprint(pts)
		}
		row := []string{formatter.Date(tx.CreatedAt), tx.Type, pts, formatter.Truncate(tx.Description, 50)}
		if admin {
			row = append([]string{tx.User}, row...)
		}
		rows = append(rows, row)
	}
	return output.PrintTable(headers, rows, data)
}
