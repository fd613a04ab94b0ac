package cart

import (
	"testing"

	"github.com/William2207/uteshop/cli/pkg/models"
)

func line(id string, qty int) models.CartItem {
	return models.CartItem{ProductID: id, Quantity: qty, Product: &models.ProductSummary{ID: id, Name: "name-" + id}}
}

func TestNotifierObserve(t *testing.T) {
	tests := []struct {
		name      string
		prev      []models.CartItem
		next      []models.CartItem
		wantKinds map[string]ChangeKind
		wantBadge int
	}{
		{
			name:      "first snapshot",
			next:      []models.CartItem{line("p1", 2), line("p2", 1)},
			wantKinds: map[string]ChangeKind{"p1": Added, "p2": Added},
			wantBadge: 2,
		},
		{
			name:      "quantity changes",
			prev:      []models.CartItem{line("p1", 2), line("p2", 3)},
			next:      []models.CartItem{line("p1", 5), line("p2", 1)},
			wantKinds: map[string]ChangeKind{"p1": Increased, "p2": Decreased},
			wantBadge: 2,
		},
		{
			name:      "removed line",
			prev:      []models.CartItem{line("p1", 2), line("p2", 3)},
			next:      []models.CartItem{line("p2", 3)},
			wantKinds: map[string]ChangeKind{"p1": Removed},
			wantBadge: 1,
		},
		{
			name:      "unchanged",
			prev:      []models.CartItem{line("p1", 2)},
			next:      []models.CartItem{line("p1", 2)},
			wantKinds: map[string]ChangeKind{},
			wantBadge: 1,
		},
		{
			name:      "badge counts products not quantity",
			next:      []models.CartItem{line("p1", 10), line("p2", 5), line("p3", 1)},
			wantKinds: map[string]ChangeKind{"p1": Added, "p2": Added, "p3": Added},
			wantBadge: 3,
		},
		{
			name:      "lines keyed by nested product",
			next:      []models.CartItem{{Product: &models.ProductSummary{ID: "p9"}, Quantity: 1}},
			wantKinds: map[string]ChangeKind{"p9": Added},
			wantBadge: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNotifier()
			if tt.prev != nil {
				n.Observe(tt.prev)
			}

			notice := n.Observe(tt.next)
			if notice.Badge != tt.wantBadge {
				t.Errorf("Badge = %d, want %d", notice.Badge, tt.wantBadge)
			}
			if len(notice.Changes) != len(tt.wantKinds) {
				t.Fatalf("got %d changes, want %d: %+v", len(notice.Changes), len(tt.wantKinds), notice.Changes)
			}
			for _, c := range notice.Changes {
				want, ok := tt.wantKinds[c.ProductID]
				if !ok || c.Kind != want {
					t.Errorf("change for %s = %s, want %s", c.ProductID, c.Kind, want)
				}
			}
		})
	}
}

func TestNotifierOrderAndQuantities(t *testing.T) {
	n := NewNotifier()
	n.Observe([]models.CartItem{line("b", 1), line("c", 4)})

	notice := n.Observe([]models.CartItem{line("a", 2), line("b", 3)})

	want := []Change{
		{ProductID: "a", Name: "name-a", Kind: Added, Before: 0, After: 2},
		{ProductID: "b", Name: "name-b", Kind: Increased, Before: 1, After: 3},
		{ProductID: "c", Name: "name-c", Kind: Removed, Before: 4, After: 0},
	}
	if len(notice.Changes) != len(want) {
		t.Fatalf("got %d changes, want %d", len(notice.Changes), len(want))
	}
	for i := range want {
		if notice.Changes[i] != want[i] {
			t.Errorf("change %d = %+v, want %+v", i, notice.Changes[i], want[i])
		}
	}
}

func TestNotifierReset(t *testing.T) {
	n := NewNotifier()
	if n.Primed() {
		t.Fatal("new notifier should not be primed")
	}

	n.Observe([]models.CartItem{line("p1", 1)})
	if !n.Primed() {
		t.Fatal("notifier should be primed after an observation")
	}

	n.Reset()
	if n.Primed() {
		t.Error("reset notifier should not be primed")
	}
	notice := n.Observe([]models.CartItem{line("p1", 1)})
	if len(notice.Changes) != 1 || notice.Changes[0].Kind != Added {
		t.Errorf("after reset every line is added, got %+v", notice.Changes)
	}
}
