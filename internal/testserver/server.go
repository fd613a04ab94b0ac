// Package testserver runs an in-memory storefront API for tests. It serves
// auth, OTP registration, cart and catalogue routes, and lets tests inject
// failures and hold requests in flight.
package testserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Error codes the auth middleware answers with.
const (
	CodeNoToken            = "NO_TOKEN"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

// Messages returned verbatim by business failures.
const (
	MsgInvalidCredentials = "Email hoặc mật khẩu không đúng"
	MsgInvalidOTP         = "Mã OTP không hợp lệ hoặc đã hết hạn"
	MsgEmailTaken         = "Email đã được sử dụng"
	MsgOutOfStock         = "Số lượng vượt quá tồn kho"
	MsgProductNotFound    = "Không tìm thấy sản phẩm"
	MsgNotInCart          = "Sản phẩm không có trong giỏ hàng"
)

type account struct {
	user     models.User
	password string
}

type failure struct {
	status  int
	code    string
	message string
}

type hold struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

// Server is a fake storefront API
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	seq      int
	accounts map[string]*account // by email
	access   map[string]string   // access token -> email
	refresh  map[string]string   // refresh token -> email
	expired  map[string]bool
	rotate   bool
	otps     map[string]string
	products map[string]models.Product
	carts    map[string][]models.CartItem // by email

	failures map[string][]failure
	holds    map[string]*hold
	calls    map[string]int
	lastAuth map[string]string
}

// New starts a server that is closed when the test ends
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		accounts: make(map[string]*account),
		access:   make(map[string]string),
		refresh:  make(map[string]string),
		expired:  make(map[string]bool),
		rotate:   true,
		otps:     make(map[string]string),
		products: make(map[string]models.Product),
		carts:    make(map[string][]models.CartItem),
		failures: make(map[string][]failure),
		holds:    make(map[string]*hold),
		calls:    make(map[string]int),
		lastAuth: make(map[string]string),
	}

	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.hooks())

	auth := r.Group("/api/auth")
	auth.POST("/login", s.login)
	auth.POST("/refresh", s.refreshToken)
	auth.GET("/me", s.requireAuth(), s.me)
	auth.POST("/register/request-otp", s.requestOTP)
	auth.POST("/register/verify-otp", s.verifyOTP)

	cart := r.Group("/api/cart", s.requireAuth())
	cart.GET("", s.getCart)
	cart.POST("/add", s.addToCart)
	cart.PUT("/update", s.updateCart)
	cart.DELETE("/remove/:productId", s.removeFromCart)
	cart.DELETE("/clear", s.clearCart)
	cart.GET("/count", s.cartCount)

	r.GET("/api/products", s.listProducts)
	r.GET("/api/products/:id", s.getProduct)
	r.GET("/api/user/profile", s.requireAuth(), s.me)

	return r
}

func key(method, path string) string {
	return method + " " + path
}

// hooks records the call, then applies any hold or injected failure for the
// matched route.
func (s *Server) hooks() gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c.Request.Method, c.FullPath())

		s.mu.Lock()
		s.calls[k]++
		s.lastAuth[k] = c.GetHeader("Authorization")
		h := s.holds[k]
		delete(s.holds, k)
		var f *failure
		if queue := s.failures[k]; len(queue) > 0 {
			f = &queue[0]
			s.failures[k] = queue[1:]
		}
		s.mu.Unlock()

		if h != nil {
			close(h.arrived)
			select {
			case <-h.release:
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}

		if f != nil {
			fail(c, f.status, f.code, f.message)
			return
		}

		c.Next()
	}
}

func fail(c *gin.Context, status int, code, message string) {
	body := gin.H{"success": false, "message": message}
	if code != "" {
		body["code"] = code
	}
	c.AbortWithStatusJSON(status, body)
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			fail(c, http.StatusUnauthorized, CodeNoToken, "Không có token")
			return
		}

		s.mu.Lock()
		email, ok := s.access[token]
		expired := s.expired[token]
		s.mu.Unlock()

		switch {
		case expired:
			fail(c, http.StatusUnauthorized, CodeTokenExpired, "Token đã hết hạn")
		case !ok:
			fail(c, http.StatusUnauthorized, CodeInvalidToken, "Token không hợp lệ")
		default:
			c.Set("email", email)
			c.Next()
		}
	}
}

// issue creates the next token pair Tn/Rn. Callers hold s.mu.
func (s *Server) issue(email string) (string, string) {
	s.seq++
	access := fmt.Sprintf("T%d", s.seq)
	refresh := fmt.Sprintf("R%d", s.seq)
	s.access[access] = email
	s.refresh[refresh] = email
	return access, refresh
}

// AddUser registers an account
func (s *Server) AddUser(email, password, name string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, password, name)
}

func (s *Server) addUserLocked(email, password, name string) models.User {
	u := models.User{
		ID:    fmt.Sprintf("u%d", len(s.accounts)+1),
		Name:  name,
		Email: email,
		Role:  models.RoleCustomer,
	}
	s.accounts[email] = &account{user: u, password: password}
	return u
}

// HasUser reports whether email is registered
func (s *Server) HasUser(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[email]
	return ok
}

// AddProduct adds a product to the catalogue
func (s *Server) AddProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// SetOTP sets the code the next verification for email must match
func (s *Server) SetOTP(email, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otps[email] = code
}

// ExpireAccessToken makes token fail with TOKEN_EXPIRED
func (s *Server) ExpireAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired[token] = true
}

// RevokeRefreshTokens makes every refresh attempt fail
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = make(map[string]string)
}

// SetRotateRefresh controls whether refresh answers carry a new refresh
// token.
func (s *Server) SetRotateRefresh(rotate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotate = rotate
}

// FailNext makes the next request to the route answer with status.
// path is the route pattern, e.g. /api/cart/remove/:productId.
func (s *Server) FailNext(method, path string, status int, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(method, path)
	s.failures[k] = append(s.failures[k], failure{status: status, code: code, message: message})
}

// Hold blocks the next request to the route until release is called.
// arrived is closed once that request reaches the server.
func (s *Server) Hold(method, path string) (arrived <-chan struct{}, release func()) {
	h := &hold{arrived: make(chan struct{}), release: make(chan struct{})}

	s.mu.Lock()
	s.holds[key(method, path)] = h
	s.mu.Unlock()

	return h.arrived, func() {
		h.once.Do(func() { close(h.release) })
	}
}

// Calls returns how many requests reached the route
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key(method, path)]
}

// LastAuth returns the Authorization header of the last request to the route
func (s *Server) LastAuth(method, path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth[key(method, path)]
}

// CartOf returns a copy of the server cart of email
func (s *Server) CartOf(email string) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(email)
}

// snapshot computes the cart totals. Callers hold s.mu.
func (s *Server) snapshot(email string) models.Cart {
	items := s.carts[email]
	cart := models.Cart{Items: make([]models.CartItem, len(items)), TotalAmount: decimal.Zero}
	copy(cart.Items, items)
	for _, item := range items {
		cart.TotalItems += item.Quantity
		cart.TotalAmount = cart.TotalAmount.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return cart
}
