package cart

// Product is a catalog entry. Price is in whole currency units.
type Product struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Image string `json:"image"`
}

var defaultCatalog = []Product{
	{ID: 1, Name: "Void Hoodie", Price: 1299, Image: "/images/void-hoodie.jpg"},
	{ID: 2, Name: "Shadow Tee", Price: 699, Image: "/images/shadow-tee.jpg"},
	{ID: 3, Name: "Abyss Jacket", Price: 2499, Image: "/images/abyss-jacket.jpg"},
	{ID: 4, Name: "Eclipse Pants", Price: 1599, Image: "/images/eclipse-pants.jpg"},
}

// Catalog returns a copy of the fixed product catalog ordered by ID.
func Catalog() []Product {
	out := make([]Product, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}

// Lookup finds a product in the fixed catalog.
func Lookup(id int) (Product, bool) {
	for _, p := range defaultCatalog {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func indexCatalog(products []Product) map[int]Product {
	idx := make(map[int]Product, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return idx
}
