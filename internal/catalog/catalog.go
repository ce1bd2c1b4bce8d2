// Package catalog is the read-only product lookup the order engine
// validates against. Entries never change at runtime; orders copy the
// name and price at creation so later catalog edits cannot rewrite them.
package catalog

type Product struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type Catalog struct {
	products []Product
	byID     map[int]Product
}

func New(products []Product) *Catalog {
	byID := make(map[int]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Catalog{products: products, byID: byID}
}

// Default returns the built-in demo catalog.
func Default() *Catalog {
	return New([]Product{
		{ID: 1, Name: "Laptop", Price: 999},
		{ID: 2, Name: "Phone", Price: 699},
		{ID: 3, Name: "Headphones", Price: 199},
		{ID: 4, Name: "Tablet", Price: 499},
	})
}

func (c *Catalog) Lookup(id int) (Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

func (c *Catalog) List() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}
