package testserver

import (
	"net/http"
	"sort"
	"strings"

	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/gin-gonic/gin"
)

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[req.Email]
	if !ok || acc.password != req.Password {
		fail(c, http.StatusUnauthorized, CodeInvalidCredentials, MsgInvalidCredentials)
		return
	}

	access, refresh := s.issue(req.Email)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Đăng nhập thành công",
		"user":         acc.user,
		"token":        access,
		"refreshToken": refresh,
	})
}

func (s *Server) refreshToken(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		fail(c, http.StatusUnauthorized, CodeNoToken, "Thiếu refresh token")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.refresh[req.RefreshToken]
	if !ok {
		fail(c, http.StatusUnauthorized, CodeInvalidToken, "Refresh token không hợp lệ")
		return
	}

	access, refresh := s.issue(email)
	if !s.rotate {
		delete(s.refresh, refresh)
		c.JSON(http.StatusOK, gin.H{"token": access})
		return
	}

	delete(s.refresh, req.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"token": access, "refreshToken": refresh})
}

func (s *Server) me(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accounts[c.GetString("email")]
	c.JSON(http.StatusOK, gin.H{"user": acc.user})
}

func (s *Server) requestOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "", "Email không hợp lệ")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.accounts[req.Email]; taken {
		fail(c, http.StatusBadRequest, "", MsgEmailTaken)
		return
	}
	if _, ok := s.otps[req.Email]; !ok {
		s.otps[req.Email] = "123456"
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Mã OTP đã được gửi tới email của bạn"})
}

func (s *Server) verifyOTP(c *gin.Context) {
	var req models.VerifyRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.otps[req.Email]
	if !ok || code != req.Code {
		fail(c, http.StatusBadRequest, "", MsgInvalidOTP)
		return
	}

	delete(s.otps, req.Email)
	s.addUserLocked(req.Email, req.Password, req.Name)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Đăng ký thành công"})
}

func (s *Server) cartResponse(c *gin.Context, message string, extra gin.H) {
	body := gin.H{
		"success": true,
		"data":    s.snapshot(c.GetString("email")),
	}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) getCart(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartResponse(c, "", nil)
}

func (s *Server) addToCart(c *gin.Context) {
	var req models.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "", err.Error())
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[req.ProductID]
	if !ok {
		fail(c, http.StatusNotFound, "", MsgProductNotFound)
		return
	}

	email := c.GetString("email")
	items := s.carts[email]
	for i := range items {
		if items[i].ProductID == req.ProductID {
			if items[i].Quantity+req.Quantity > product.Stock {
				fail(c, http.StatusBadRequest, "", MsgOutOfStock)
				return
			}
			items[i].Quantity += req.Quantity
			s.cartResponse(c, "Đã cập nhật số lượng sản phẩm", gin.H{"isNewProduct": false})
			return
		}
	}

	if req.Quantity > product.Stock {
		fail(c, http.StatusBadRequest, "", MsgOutOfStock)
		return
	}

	s.carts[email] = append(items, models.CartItem{
		ProductID: product.ID,
		Product: &models.ProductSummary{
			ID:    product.ID,
			Name:  product.Name,
			Price: product.EffectivePrice(),
			Stock: product.Stock,
		},
		Quantity:  req.Quantity,
		UnitPrice: product.EffectivePrice(),
	})
	s.cartResponse(c, "Đã thêm sản phẩm vào giỏ hàng", gin.H{"isNewProduct": true})
}

func (s *Server) updateCart(c *gin.Context) {
	var req models.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := c.GetString("email")
	items := s.carts[email]
	for i := range items {
		if items[i].ProductID != req.ProductID {
			continue
		}
		if req.Quantity > s.products[req.ProductID].Stock {
			fail(c, http.StatusBadRequest, "", MsgOutOfStock)
			return
		}
		if req.Quantity <= 0 {
			s.carts[email] = append(items[:i], items[i+1:]...)
		} else {
			items[i].Quantity = req.Quantity
		}
		s.cartResponse(c, "", nil)
		return
	}

	fail(c, http.StatusNotFound, "", MsgNotInCart)
}

func (s *Server) removeFromCart(c *gin.Context) {
	productID := c.Param("productId")

	s.mu.Lock()
	defer s.mu.Unlock()

	email := c.GetString("email")
	items := s.carts[email]
	for i := range items {
		if items[i].ProductID == productID {
			s.carts[email] = append(items[:i], items[i+1:]...)
			s.cartResponse(c, "Đã xóa sản phẩm khỏi giỏ hàng", nil)
			return
		}
	}

	fail(c, http.StatusNotFound, "", MsgNotInCart)
}

func (s *Server) clearCart(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, c.GetString("email"))
	s.cartResponse(c, "Đã xóa toàn bộ giỏ hàng", nil)
}

func (s *Server) cartCount(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.snapshot(c.GetString("email"))
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"totalItems": cart.TotalItems}})
}

func (s *Server) listProducts(c *gin.Context) {
	search := strings.ToLower(c.Query("search"))

	s.mu.Lock()
	items := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if search == "" || strings.Contains(strings.ToLower(p.Name), search) {
			items = append(items, p)
		}
	}
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"page":       1,
		"total":      len(items),
		"totalPages": 1,
	})
}

func (s *Server) getProduct(c *gin.Context) {
	s.mu.Lock()
	p, ok := s.products[c.Param("id")]
	s.mu.Unlock()

	if !ok {
		fail(c, http.StatusNotFound, "", MsgProductNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
}
