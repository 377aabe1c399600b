package domain

// ProductRepository defines the interface for managing tracked products and
// reading them together with their sectors or dividends.
type ProductRepository interface {
	// GetProducts retrieves all products ordered by ticker.
	GetProducts() ([]*Product, error)

	// GetProduct retrieves a single product by ID.
	// It returns ErrNotFound if the product does not exist.
	GetProduct(id int64) (*Product, error)

	// GetProductByTicker retrieves the product registered under the given ticker.
	// It returns ErrNotFound if no product uses that ticker.
	GetProductByTicker(ticker string) (*Product, error)

	// InsertProduct stores a new product and returns its generated ID.
	InsertProduct(product *Product) (int64, error)

	// UpdateProduct overwrites ticker, name and ISIN of an existing product.
	UpdateProduct(product *Product) error

	// DeleteProduct removes a product. Its dividends and sector links are removed with it.
	DeleteProduct(id int64) error

	// GetProductsWithSectors retrieves every product with the sectors it belongs to.
	GetProductsWithSectors() ([]*ProductWithSectors, error)

	// GetProductWithSectors retrieves one product with its sectors.
	GetProductWithSectors(id int64) (*ProductWithSectors, error)

	// GetProductsWithDividends retrieves every product with its dividends ordered by date.
	GetProductsWithDividends() ([]*ProductWithDividends, error)

	// GetProductWithDividends retrieves one product with its dividends ordered by date.
	GetProductWithDividends(id int64) (*ProductWithDividends, error)
}

// Product is a tracked financial instrument.
type Product struct {
	ID     int64  // Database identifier.
	Ticker string // Exchange ticker, e.g. "TTE.PA".
	Name   string // Display name of the company or fund.
	ISIN   string // International Securities Identification Number, may be empty.
}

// ProductWithSectors pairs a product with the sectors it is grouped under.
type ProductWithSectors struct {
	Product *Product
	Sectors []*Sector
}

// ProductWithDividends pairs a product with its recorded dividend payments.
type ProductWithDividends struct {
	Product   *Product
	Dividends []*Dividend
}
