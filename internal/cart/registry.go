package cart

import (
	"sync"

	"MiniShop/internal/catalog"
)

// Line is a snapshot of the product at the moment it was added, plus a
// quantity counter. Its stock field is never refreshed afterwards, so it can
// lag the catalog; checkout never reads it.
type Line struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
	Qty   int    `json:"qty"`
}

// Registry holds one cart per username. Carts are created lazily on first
// add and emptied, not deleted, by checkout.
type Registry struct {
	mu      sync.Mutex
	catalog *catalog.Store
	carts   map[string][]Line
}

func NewRegistry(c *catalog.Store) *Registry {
	return &Registry{catalog: c, carts: make(map[string][]Line)}
}

// AddItem reserves one unit of productID from the catalog and folds it into
// username's cart: an existing line for the product gets its qty bumped,
// otherwise a new line is appended. Returns the updated cart.
func (r *Registry) AddItem(username string, productID int) ([]Line, error) {
	p, err := r.catalog.Reserve(productID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lines := r.carts[username]
	for i := range lines {
		if lines[i].ID == productID {
			lines[i].Qty++
			return copyLines(lines), nil
		}
	}

	lines = append(lines, Line{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Stock: p.Stock,
		Qty:   1,
	})
	r.carts[username] = lines
	return copyLines(lines), nil
}

// Get returns username's cart, empty if they never added anything.
func (r *Registry) Get(username string) []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyLines(r.carts[username])
}

// Checkout resets the cart to empty. Catalog stock is untouched: the units
// were already taken at add time and there is no settlement step.
func (r *Registry) Checkout(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[username] = []Line{}
}

func copyLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
