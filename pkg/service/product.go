package service

import (
	"context"
	"strconv"

	"github.com/William2207/uteshop/cli/pkg/api"
	"github.com/William2207/uteshop/cli/pkg/formatter"
	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/William2207/uteshop/cli/pkg/output"
)

// ProductService browses the catalogue. None of it needs a session.
type ProductService struct {
	rt *Runtime
}

// NewProductService creates a new product service
func NewProductService(rt *Runtime) *ProductService {
	return &ProductService{rt: rt}
}

// List prints one page of products matching q
func (s *ProductService) List(ctx context.Context, q models.ProductQuery) error {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 12
	}

	page, err := s.rt.API.ListProducts(ctx, q)
	if err != nil {
		return err
	}
	if len(page.Items) == 0 {
		output.PrintInfo("No products found")
		return nil
	}
	if err := printProducts(page.Items, pageData(page)); err != nil {
		return err
	}
	printPagination(page.Pagination)
	return nil
}

// Show prints one product and records the view
func (s *ProductService) Show(ctx context.Context, id string) error {
	if err := requireArg("product id", id); err != nil {
		return err
	}

	p, err := s.rt.API.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.rt.API.RecordView(ctx, id); err != nil {
		logger.Debug("Failed to record product view", "product_id", id, "error", err)
	}

	fields := []output.Field{
		{Key: "ID", Value: p.ID},
		{Key: "Name", Value: p.Name},
		{Key: "Price", Value: formatter.Price(*p)},
		{Key: "Stock", Value: formatter.Stock(p.Stock)},
	}
	if p.Category != "" {
		fields = append(fields, output.Field{Key: "Category", Value: p.Category})
	}
	if p.Brand != "" {
		fields = append(fields, output.Field{Key: "Brand", Value: p.Brand})
	}
	if p.ReviewCount > 0 {
		fields = append(fields, output.Field{
			Key:   "Rating",
			Value: formatter.Stars(p.Rating) + " (" + strconv.Itoa(p.ReviewCount) + " reviews)",
		})
	}
	if p.SoldCount > 0 {
		fields = append(fields, output.Field{Key: "Sold", Value: p.SoldCount})
	}
	if p.Description != "" {
		fields = append(fields, output.Field{Key: "Description", Value: p.Description})
	}
	return output.PrintRecord(p.Name, fields, p)
}

// Home prints the landing page blocks
func (s *ProductService) Home(ctx context.Context) error {
	blocks, err := s.rt.API.HomeBlocks(ctx)
	if err != nil {
		return err
	}
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", blocks)
	}

	sections := []struct {
		title string
		items []models.Product
	}{
		{"New arrivals", blocks.NewArrivals},
		{"Best sellers", blocks.BestSellers},
		{"Most viewed", blocks.MostViewed},
		{"Top discounts", blocks.TopDiscounts},
	}
	for _, sec := range sections {
		if len(sec.items) == 0 {
			continue
		}
		output.Println(formatter.Bold.Sprint(sec.title))
		if err := printProducts(sec.items, sec.items); err != nil {
			return err
		}
		output.Println()
	}
	return nil
}

// New prints the newest products
func (s *ProductService) New(ctx context.Context, limit int) error {
	if limit < 1 {
		limit = 8
	}
	page, err := s.rt.API.NewArrivals(ctx, limit)
	if err != nil {
		return err
	}
	if len(page.Items) == 0 {
		output.PrintInfo("No products found")
		return nil
	}
	return printProducts(page.Items, pageData(page))
}

// Similar prints products related to id
func (s *ProductService) Similar(ctx context.Context, id string, limit int) error {
	if err := requireArg("product id", id); err != nil {
		return err
	}
	if limit < 1 {
		limit = 8
	}
	products, err := s.rt.API.SimilarProducts(ctx, id, limit)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		output.PrintInfo("No similar products")
		return nil
	}
	return printProducts(products, products)
}

func printProducts(products []models.Product, data interface{}) error {
	headers := []string{"ID", "Name", "Price", "Stock", "Rating"}
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rating := ""
		if p.ReviewCount > 0 {
			rating = formatter.Stars(p.Rating)
		}
		rows = append(rows, []string{
			p.ID,
			formatter.Truncate(p.Name, 40),
			formatter.Price(p),
			formatter.Stock(p.Stock),
			rating,
		})
	}
	return output.PrintTable(headers, rows, data)
}

func printPagination(p models.Pagination) {
	if output.GetOutputFormat() == output.FormatJSON || p.TotalPages <= 1 {
		return
	}
	output.Println(formatter.Faint.Sprintf("Page %d of %d (%d total)", p.Page, p.TotalPages, p.Total))
}

// pageData adapts a list page for JSON output.
func pageData[T any](page *api.Page[T]) interface{} {
	return struct {
		Items      []T               `json:"items"`
		Pagination models.Pagination `json:"pagination"`
	}{page.Items, page.Pagination}
}
