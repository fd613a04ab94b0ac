package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/William2207/uteshop/cli/internal/testserver"
	"github.com/William2207/uteshop/cli/pkg/config"
	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_RequiresLogin(t *testing.T) {
	e := newEnv(t, "")
	svc := NewCartService(e.rt)

	err := svc.Add(context.Background(), "p1", 1)
	assert.True(t, clierrors.IsType(err, clierrors.ErrorTypeAuth))
	assert.Zero(t, e.srv.Calls(http.MethodPost, "/api/cart/add"))
}

func TestCartService_AddAndShow(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	svc := NewCartService(e.rt)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "p1", 2))
	require.NoError(t, svc.Add(ctx, "p2", 1))
	assert.Contains(t, e.out.String(), "Cart: 3 items, 700.000 ₫")

	require.NoError(t, svc.Show(ctx))
	out := e.out.String()
	assert.Contains(t, out, "Áo thun")
	assert.Contains(t, out, "Quần jean")
	assert.Contains(t, out, "300.000 ₫")
	assert.Contains(t, out, "Total: 3 items, 700.000 ₫")
}

func TestCartService_AddOutOfStock(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	svc := NewCartService(e.rt)

	err := svc.Add(context.Background(), "p2", 5)
	require.Error(t, err)
	assert.Equal(t, testserver.MsgOutOfStock, clierrors.CategorizeError(err).Message)
	assert.Empty(t, e.rt.Cart.State().Items)
}

func TestCartService_ClearAsksFirst(t *testing.T) {
	e := newEnv(t, "n\ny\n")
	e.login(t)
	svc := NewCartService(e.rt)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "p1", 1))

	require.NoError(t, svc.Clear(ctx, false))
	assert.Zero(t, e.srv.Calls(http.MethodDelete, "/api/cart/clear"))
	assert.Len(t, e.srv.CartOf("a@b.com").Items, 1)

	require.NoError(t, svc.Clear(ctx, false))
	assert.Empty(t, e.srv.CartOf("a@b.com").Items)
	assert.Zero(t, e.rt.Cart.State().TotalItems)
}

func TestCartService_UpdateRemoveCount(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	svc := NewCartService(e.rt)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "p1", 1))
	require.NoError(t, svc.Update(ctx, "p1", 4))
	assert.Equal(t, 4, e.rt.Cart.State().TotalItems)

	require.NoError(t, svc.Count(ctx))
	assert.Contains(t, e.out.String(), "Items: 4")

	require.NoError(t, svc.Remove(ctx, "p1"))
	assert.Empty(t, e.rt.Cart.State().Items)
}

func TestCartService_ShowEmptyAsJSON(t *testing.T) {
	e := newEnv(t, "")
	e.login(t)
	config.Set("output.format", "json")
	t.Cleanup(func() { config.Set("output.format", "text") })

	require.NoError(t, NewCartService(e.rt).Show(context.Background()))
	assert.Contains(t, e.out.String(), `"totalItems": 0`)
	assert.Contains(t, e.out.String(), `"items": []`)
}
