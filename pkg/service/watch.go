package service

import (
	"context"

	"github.com/William2207/uteshop/cli/pkg/cart"
	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/events"
	"github.com/William2207/uteshop/cli/pkg/formatter"
	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/William2207/uteshop/cli/pkg/output"
	"github.com/William2207/uteshop/cli/pkg/realtime"
)

// WatchService streams push updates until the context ends
type WatchService struct {
	rt       *Runtime
	notifier *cart.Notifier
}

// NewWatchService creates a new watch service
func NewWatchService(rt *Runtime) *WatchService {
	return &WatchService{rt: rt, notifier: cart.NewNotifier()}
}

// Watch connects to the realtime endpoint and prints cart, order and points
// updates. A cart_updated message reloads the whole cart; the printed diff
// compares it with the previous snapshot.
func (s *WatchService) Watch(ctx context.Context) error {
	if err := s.rt.RequireLogin(ctx); err != nil {
		return err
	}

	unsubCart := s.rt.Bus.Subscribe(events.CartChanged, func(e events.Event) {
		c, ok := e.Payload.(models.Cart)
		if !ok {
			return
		}
		if !s.notifier.Primed() {
			s.notifier.Observe(c.Items)
			return
		}
		s.printNotice(s.notifier.Observe(c.Items))
	})
	defer unsubCart()

	loggedOut := make(chan struct{}, 1)
	unsubLogout := s.rt.Bus.Subscribe(events.LoggedOut, func(events.Event) {
		s.notifier.Reset()
		select {
		case loggedOut <- struct{}{}:
		default:
		}
	})
	defer unsubLogout()

	if err := s.rt.Cart.Fetch(ctx); err != nil {
		return err
	}

	client := realtime.NewClient(s.rt.Realtime, s.rt.Session)
	reload := make(chan struct{}, 1)

	client.On(realtime.MessageTypeCartUpdated, func(realtime.Message) {
		select {
		case reload <- struct{}{}:
		default:
		}
	})
	client.On(realtime.MessageTypeOrderStatus, func(msg realtime.Message) {
		var p realtime.OrderStatus
		if err := msg.Decode(&p); err != nil {
			logger.Warn("Bad order_status message", "error", err)
			return
		}
		output.PrintInfo("Order %s is now %s", p.OrderID, formatter.OrderStatus(p.Status))
	})
	client.On(realtime.MessageTypePointsChanged, func(msg realtime.Message) {
		var p realtime.PointsChanged
		if err := msg.Decode(&p); err != nil {
			logger.Warn("Bad points_changed message", "error", err)
			return
		}
		if st := s.rt.Session.State(); st.User != nil {
			user := *st.User
			user.Points = p.Balance
			s.rt.Session.SetUser(&user)
		}
		output.PrintInfo("Points %+d, balance %d %s", p.Delta, p.Balance, p.Reason)
	})
	client.On(realtime.MessageTypeError, func(msg realtime.Message) {
		logger.Warn("Realtime server error", "payload", string(msg.Payload))
	})

	if err := client.Connect(ctx); err != nil {
		return clierrors.NetworkError(err)
	}
	defer client.Disconnect()

	output.PrintSuccess("✓ Watching for updates (Ctrl+C to stop)")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-client.Done():
			return clierrors.NewCLIError(clierrors.ErrorTypeNetwork, "Realtime connection lost", nil)
		case <-loggedOut:
			return clierrors.SessionExpiredError(nil)
		case <-reload:
			if err := s.rt.Cart.Fetch(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("Failed to reload cart", "error", err)
			}
		}
	}
}

// printNotice prints one line per changed product
func (s *WatchService) printNotice(n cart.Notice) {
	for _, c := range n.Changes {
		name := orDefault(c.Name, c.ProductID)
		switch c.Kind {
		case cart.Added:
			output.PrintSuccess("+ %s x%d", name, c.After)
		case cart.Increased:
			output.PrintInfo("↑ %s %d → %d", name, c.Before, c.After)
		case cart.Decreased:
			output.PrintWarning("↓ %s %d → %d", name, c.Before, c.After)
		case cart.Removed:
			output.PrintWarning("- %s", name)
		}
	}
	if len(n.Changes) > 0 {
		output.PrintInfo("Cart badge: %d", n.Badge)
	}
}
