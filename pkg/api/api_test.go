package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/William2207/uteshop/cli/internal/testserver"
	"github.com/William2207/uteshop/cli/pkg/client"
	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func newAPI(baseURL, token string) *Client {
	gw := client.New(client.Config{BaseURL: baseURL, Timeout: 2 * time.Second})
	gw.SetTokenSource(staticToken(token))
	return New(gw)
}

func seededServer(t *testing.T) *testserver.Server {
	srv := testserver.New(t)
	srv.AddUser("a@b.com", "secret", "An Nguyen")
	srv.AddProduct(models.Product{ID: "p1", Name: "Áo thun", Price: decimal.NewFromInt(150000), Stock: 10})
	srv.AddProduct(models.Product{ID: "p2", Name: "Quần jean", Price: decimal.NewFromInt(400000), DiscountPrice: decimal.NewFromInt(350000), Stock: 3})
	return srv
}

func TestLogin(t *testing.T) {
	srv := seededServer(t)
	c := newAPI(srv.URL, "")

	resp, err := c.Login(context.Background(), models.LoginRequest{Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "T1", resp.Token)
	assert.Equal(t, "R1", resp.RefreshToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "An Nguyen", resp.User.Name)
	assert.Empty(t, srv.LastAuth(http.MethodPost, "/api/auth/login"))
}

func TestLoginWrongPassword(t *testing.T) {
	srv := seededServer(t)
	c := newAPI(srv.URL, "")

	_, err := c.Login(context.Background(), models.LoginRequest{Email: "a@b.com", Password: "nope"})
	require.Error(t, err)

	apiErr, ok := clierrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, testserver.MsgInvalidCredentials, apiErr.Message)
}

func TestRefreshAndMe(t *testing.T) {
	srv := seededServer(t)
	ctx := context.Background()

	login, err := newAPI(srv.URL, "").Login(ctx, models.LoginRequest{Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)

	pair, err := newAPI(srv.URL, "").Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "T2", pair.Token)
	assert.Equal(t, "R2", pair.RefreshToken)

	me, err := newAPI(srv.URL, pair.Token).Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", me.Email)
}

func TestCartRoundTrip(t *testing.T) {
	srv := seededServer(t)
	ctx := context.Background()
	login, err := newAPI(srv.URL, "").Login(ctx, models.LoginRequest{Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)
	c := newAPI(srv.URL, login.Token)

	added, err := c.AddToCart(ctx, "p1", 2)
	require.NoError(t, err)
	assert.True(t, added.IsNewProduct)
	assert.Equal(t, 2, added.Cart.TotalItems)
	require.Len(t, added.Cart.Items, 1)
	assert.Equal(t, "p1", added.Cart.Items[0].ProductID)
	assert.True(t, decimal.NewFromInt(300000).Equal(added.Cart.TotalAmount))

	again, err := c.AddToCart(ctx, "p1", 1)
	require.NoError(t, err)
	assert.False(t, again.IsNewProduct)
	assert.Equal(t, 3, again.Cart.TotalItems)

	updated, err := c.UpdateCartItem(ctx, "p1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalItems)

	count, err := c.CartCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	removed, err := c.RemoveFromCart(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, removed.Items)
	assert.Equal(t, 0, removed.TotalItems)

	cleared, err := c.ClearCart(ctx)
	require.NoError(t, err)
	assert.NotNil(t, cleared.Items)
}

func TestAddToCartOutOfStock(t *testing.T) {
	srv := seededServer(t)
	ctx := context.Background()
	login, err := newAPI(srv.URL, "").Login(ctx, models.LoginRequest{Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)

	_, err = newAPI(srv.URL, login.Token).AddToCart(ctx, "p2", 4)
	require.Error(t, err)
	assert.Equal(t, testserver.MsgOutOfStock, clierrors.CategorizeError(err).Message)
	assert.True(t, clierrors.IsType(err, clierrors.ErrorTypeBusiness))
}

func TestListProducts(t *testing.T) {
	srv := seededServer(t)

	page, err := newAPI(srv.URL, "").ListProducts(context.Background(), models.ProductQuery{Search: "jean"})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "p2", page.Items[0].ID)
	assert.True(t, decimal.NewFromInt(350000).Equal(page.Items[0].EffectivePrice()))
	assert.Equal(t, 1, page.Pagination.TotalPages)
}

func TestRegisterOTP(t *testing.T) {
	srv := seededServer(t)
	c := newAPI(srv.URL, "")
	ctx := context.Background()

	msg, err := c.RequestRegisterOTP(ctx, "new@b.com")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	_, err = c.VerifyRegisterOTP(ctx, models.VerifyRegisterRequest{Email: "new@b.com", Code: "000000", Name: "Binh", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, testserver.MsgInvalidOTP, clierrors.CategorizeError(err).Message)

	_, err = c.VerifyRegisterOTP(ctx, models.VerifyRegisterRequest{Email: "new@b.com", Code: "123456", Name: "Binh", Password: "secret1"})
	require.NoError(t, err)
	assert.True(t, srv.HasUser("new@b.com"))
}

// recorded captures one request made against a canned server
type recorded struct {
	method string
	path   string
	query  string
	body   string
}

func cannedServer(t *testing.T, status int, response string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rec.method, rec.path, rec.query, rec.body = r.Method, r.URL.Path, r.URL.RawQuery, string(data)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)
	return newAPI(server.URL, "T1"), rec
}

func TestEndpointRoutes(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name   string
		call   func(c *Client) error
		method string
		path   string
	}{
		{"forgot password", func(c *Client) error { _, err := c.ForgotPassword(ctx, "a@b.com"); return err }, "POST", "/api/auth/forgot-password"},
		{"reset password", func(c *Client) error {
			_, err := c.ResetPassword(ctx, models.ResetPasswordRequest{Email: "a@b.com", Code: "123456", NewPassword: "secret2"})
			return err
		}, "POST", "/api/auth/reset-password"},
		{"home blocks", func(c *Client) error { _, err := c.HomeBlocks(ctx); return err }, "GET", "/api/products/home-blocks"},
		{"product", func(c *Client) error { _, err := c.GetProduct(ctx, "p1"); return err }, "GET", "/api/products/p1"},
		{"record view", func(c *Client) error { return c.RecordView(ctx, "p1") }, "POST", "/api/products/p1/view"},
		{"similar", func(c *Client) error { _, err := c.SimilarProducts(ctx, "p1", 4); return err }, "GET", "/api/products/p1/similar"},
		{"profile", func(c *Client) error { _, err := c.GetProfile(ctx); return err }, "GET", "/api/user/profile"},
		{"update profile", func(c *Client) error {
			_, err := c.UpdateProfile(ctx, models.UpdateProfileRequest{Name: "An"})
			return err
		}, "PUT", "/api/user/profile"},
		{"change password", func(c *Client) error {
			_, err := c.ChangePassword(ctx, models.ChangePasswordRequest{CurrentPassword: "a", NewPassword: "bbbbbb"})
			return err
		}, "PUT", "/api/user/password"},
		{"addresses", func(c *Client) error { _, err := c.ListAddresses(ctx); return err }, "GET", "/api/user/addresses"},
		{"create address", func(c *Client) error { _, err := c.CreateAddress(ctx, models.Address{FullName: "An"}); return err }, "POST", "/api/user/addresses"},
		{"update address", func(c *Client) error { _, err := c.UpdateAddress(ctx, "a1", models.Address{}); return err }, "PUT", "/api/user/addresses/a1"},
		{"delete address", func(c *Client) error { return c.DeleteAddress(ctx, "a1") }, "DELETE", "/api/user/addresses/a1"},
		{"default address", func(c *Client) error { _, err := c.SetDefaultAddress(ctx, "a1"); return err }, "PUT", "/api/user/addresses/a1/default"},
		{"claim reward", func(c *Client) error { _, err := c.ClaimReward(ctx, models.ClaimRewardRequest{RewardType: "points"}); return err }, "POST", "/api/user/claim-reward"},
		{"product reviews", func(c *Client) error { _, err := c.ProductReviews(ctx, "p1", 1, 10); return err }, "GET", "/api/reviews/product/p1"},
		{"my review", func(c *Client) error { _, err := c.MyReview(ctx, "p1"); return err }, "GET", "/api/reviews/product/p1/mine"},
		{"create review", func(c *Client) error { _, err := c.CreateReview(ctx, models.ReviewRequest{ProductID: "p1", Rating: 5}); return err }, "POST", "/api/reviews"},
		{"update review", func(c *Client) error { _, err := c.UpdateReview(ctx, "r1", models.ReviewRequest{Rating: 4}); return err }, "PUT", "/api/reviews/r1"},
		{"delete review", func(c *Client) error { return c.DeleteReview(ctx, "r1") }, "DELETE", "/api/reviews/r1"},
		{"favorites", func(c *Client) error { _, err := c.Favorites(ctx); return err }, "GET", "/api/favorites"},
		{"toggle favorite", func(c *Client) error { _, err := c.ToggleFavorite(ctx, "p1"); return err }, "POST", "/api/favorites/p1/toggle"},
		{"check favorite", func(c *Client) error { _, err := c.IsFavorite(ctx, "p1"); return err }, "GET", "/api/favorites/p1/check"},
		{"available vouchers", func(c *Client) error { _, err := c.AvailableVouchers(ctx); return err }, "GET", "/api/vouchers/available"},
		{"apply voucher", func(c *Client) error { _, err := c.ApplyVoucher(ctx, "SALE10", decimal.NewFromInt(500000)); return err }, "POST", "/api/vouchers/apply"},
		{"admin vouchers", func(c *Client) error { _, err := c.AdminVouchers(ctx, 1, 20); return err }, "GET", "/api/admin/vouchers"},
		{"create voucher", func(c *Client) error { _, err := c.CreateVoucher(ctx, models.Voucher{Code: "SALE10"}); return err }, "POST", "/api/admin/vouchers"},
		{"update voucher", func(c *Client) error { _, err := c.UpdateVoucher(ctx, "v1", models.Voucher{}); return err }, "PUT", "/api/admin/vouchers/v1"},
		{"delete voucher", func(c *Client) error { return c.DeleteVoucher(ctx, "v1") }, "DELETE", "/api/admin/vouchers/v1"},
		{"create order", func(c *Client) error { _, err := c.CreateOrder(ctx, models.CreateOrderRequest{}); return err }, "POST", "/api/orders"},
		{"my orders", func(c *Client) error { _, err := c.MyOrders(ctx, models.OrderQuery{Status: "pending"}); return err }, "GET", "/api/orders"},
		{"order", func(c *Client) error { _, err := c.GetOrder(ctx, "o1"); return err }, "GET", "/api/orders/o1"},
		{"cancel order", func(c *Client) error { _, err := c.CancelOrder(ctx, "o1", ""); return err }, "PUT", "/api/orders/o1/cancel"},
		{"admin orders", func(c *Client) error { _, err := c.AdminOrders(ctx, models.OrderQuery{}); return err }, "GET", "/api/admin/orders"},
		{"order status", func(c *Client) error { _, err := c.UpdateOrderStatus(ctx, "o1", "shipping"); return err }, "PUT", "/api/admin/orders/o1/status"},
		{"order stats", func(c *Client) error { _, err := c.OrderStats(ctx); return err }, "GET", "/api/admin/orders/stats"},
		{"point history", func(c *Client) error { _, err := c.PointHistory(ctx, 1, 10); return err }, "GET", "/api/points/history"},
		{"points config", func(c *Client) error { _, err := c.PointsConfig(ctx); return err }, "GET", "/api/points/config"},
		{"redeem points", func(c *Client) error { _, err := c.RedeemPoints(ctx, models.PointsRedeemRequest{Points: 10}); return err }, "POST", "/api/points/redeem"},
		{"earn points", func(c *Client) error { _, err := c.EarnPoints(ctx, "o1"); return err }, "POST", "/api/points/earn"},
		{"point customers", func(c *Client) error { _, err := c.AdminPointCustomers(ctx, 1, 10, ""); return err }, "GET", "/api/admin/points/customers"},
		{"point transactions", func(c *Client) error { _, err := c.AdminPointTransactions(ctx, 1, 10, "u1"); return err }, "GET", "/api/admin/points/transactions"},
		{"create point transaction", func(c *Client) error {
			_, err := c.CreatePointTransaction(ctx, models.AdminPointTransactionRequest{UserID: "u1", Type: "ADJUSTED", Points: 5})
			return err
		}, "POST", "/api/admin/points/transactions"},
		{"points stats", func(c *Client) error { _, err := c.PointsStats(ctx); return err }, "GET", "/api/admin/points/stats"},
		{"update points config", func(c *Client) error { _, err := c.UpdatePointsConfig(ctx, models.PointsConfig{}); return err }, "PUT", "/api/admin/points/config"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := cannedServer(t, http.StatusOK, `{"success":true,"message":"ok"}`)
			require.NoError(t, tc.call(c))
			assert.Equal(t, tc.method, rec.method)
			assert.Equal(t, tc.path, rec.path)
		})
	}
}

func TestDecodeEnvelopeWithPagination(t *testing.T) {
	c, rec := cannedServer(t, http.StatusOK, `{
		"success": true,
		"data": [{"_id":"o1","status":"pending","totalPrice":250000}],
		"pagination": {"page":2,"limit":1,"total":3,"totalPages":3}
	}`)

	page, err := c.MyOrders(context.Background(), models.OrderQuery{Page: 2, Limit: 1, Status: "pending"})
	require.NoError(t, err)

	assert.Equal(t, "limit=1&page=2&status=pending", rec.query)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "o1", page.Items[0].ID)
	assert.True(t, decimal.NewFromInt(250000).Equal(page.Items[0].TotalPrice))
	assert.Equal(t, models.Pagination{Page: 2, Limit: 1, Total: 3, TotalPages: 3}, page.Pagination)
}

func TestDecodeNestedKey(t *testing.T) {
	c, _ := cannedServer(t, http.StatusOK, `{"success":true,"data":{"order":{"_id":"o9","status":"confirmed"}}}`)

	order, err := c.GetOrder(context.Background(), "o9")
	require.NoError(t, err)
	assert.Equal(t, "o9", order.ID)
	assert.True(t, order.CanCancel())
}

func TestAddToCartSpreadShape(t *testing.T) {
	c, rec := cannedServer(t, http.StatusOK, `{
		"success": true,
		"isNewProduct": true,
		"items": [{"product":{"_id":"p1","name":"Áo","price":150000},"quantity":2}],
		"totalItems": 2,
		"totalAmount": 300000
	}`)

	res, err := c.AddToCart(context.Background(), "p1", 2)
	require.NoError(t, err)

	assert.JSONEq(t, `{"productId":"p1","quantity":2}`, rec.body)
	assert.True(t, res.IsNewProduct)
	assert.Equal(t, 2, res.Cart.TotalItems)
	require.Len(t, res.Cart.Items, 1)
	assert.Equal(t, "p1", res.Cart.Items[0].ProductID)
	assert.True(t, decimal.NewFromInt(150000).Equal(res.Cart.Items[0].UnitPrice))
}

func TestSuccessFalseIsAnError(t *testing.T) {
	c, _ := cannedServer(t, http.StatusOK, `{"success":false,"message":"Voucher đã hết lượt sử dụng"}`)

	_, err := c.ApplyVoucher(context.Background(), "SALE10", decimal.NewFromInt(100000))
	require.Error(t, err)
	assert.Equal(t, "Voucher đã hết lượt sử dụng", clierrors.CategorizeError(err).Message)
}

func TestMyReviewNotFound(t *testing.T) {
	c, _ := cannedServer(t, http.StatusNotFound, `{"success":false,"message":"Chưa có đánh giá"}`)

	review, err := c.MyReview(context.Background(), "p1")
	require.NoError(t, err)
	assert.Nil(t, review)
}

func TestUploadAvatar(t *testing.T) {
	var fileName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, header, err := r.FormFile("avatar"); err == nil {
			fileName = header.Filename
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true,"data":{"user":{"_id":"u1","avatarUrl":"/uploads/me.png"}}}`)
	}))
	defer server.Close()

	user, err := newAPI(server.URL, "T1").UploadAvatar(context.Background(), "/tmp/photos/me.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "me.png", fileName)
	assert.Equal(t, "/uploads/me.png", user.AvatarURL)
}
