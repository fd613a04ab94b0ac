package cart

import (
	"sort"
	"sync"

	"github.com/William2207/uteshop/cli/pkg/models"
)

// ChangeKind describes how a product's line changed between two snapshots
type ChangeKind int

const (
	Added ChangeKind = iota
	Increased
	Decreased
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Increased:
		return "increased"
	case Decreased:
		return "decreased"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is one product whose quantity differs between two snapshots
type Change struct {
	ProductID string
	Name      string
	Kind      ChangeKind
	Before    int
	After     int
}

// Notice is the result of observing a snapshot. Badge is the number of
// distinct products in the cart.
type Notice struct {
	Changes []Change
	Badge   int
}

// Notifier diffs successive cart snapshots
type Notifier struct {
	mu     sync.Mutex
	primed bool
	prev   map[string]models.CartItem
}

// NewNotifier returns a notifier whose first observation reports every line
// as added.
func NewNotifier() *Notifier {
	return &Notifier{prev: make(map[string]models.CartItem)}
}

// Observe compares items with the previous snapshot and remembers them.
// Changes are ordered by product id.
func (n *Notifier) Observe(items []models.CartItem) Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	next := make(map[string]models.CartItem, len(items))
	for _, item := range items {
		key := item.Key()
		if key == "" {
			continue
		}
		if existing, ok := next[key]; ok {
			item.Quantity += existing.Quantity
		}
		next[key] = item
	}

	var changes []Change
	for key, item := range next {
		before, ok := n.prev[key]
		switch {
		case !ok:
			changes = append(changes, change(key, item, Added, 0, item.Quantity))
		case item.Quantity > before.Quantity:
			changes = append(changes, change(key, item, Increased, before.Quantity, item.Quantity))
		case item.Quantity < before.Quantity:
			changes = append(changes, change(key, item, Decreased, before.Quantity, item.Quantity))
		}
	}
	for key, item := range n.prev {
		if _, ok := next[key]; !ok {
			changes = append(changes, change(key, item, Removed, item.Quantity, 0))
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].ProductID < changes[j].ProductID })

	n.prev = next
	n.primed = true
	return Notice{Changes: changes, Badge: len(next)}
}

// Reset forgets the previous snapshot
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.prev = make(map[string]models.CartItem)
	n.primed = false
}

// Primed reports whether a snapshot has been observed since the last reset
func (n *Notifier) Primed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.primed
}

func change(key string, item models.CartItem, kind ChangeKind, before, after int) Change {
	c := Change{ProductID: key, Kind: kind, Before: before, After: after}
	if item.Product != nil {
		c.Name = item.Product.Name
	}
	return c
}
