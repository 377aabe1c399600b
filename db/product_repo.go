package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/divreminder/divreminder/domain"
)

var _ domain.ProductRepository = (*Repository)(nil)

// dbProduct represents a product as stored in the database.
type dbProduct struct {
	ID     int64  `db:"id"`     // Autoincrement identifier.
	Ticker string `db:"ticker"` // Exchange ticker.
	Name   string `db:"name"`   // Display name.
	ISIN   string `db:"isin"`   // ISIN, empty when unknown.
}

// toDomainProduct converts a dbProduct to a domain.Product.
func toDomainProduct(dbProduct *dbProduct) *domain.Product {
	return &domain.Product{
		ID:     dbProduct.ID,
		Ticker: dbProduct.Ticker,
		Name:   dbProduct.Name,
		ISIN:   dbProduct.ISIN,
	}
}

// fromDomainProduct converts a domain.Product to a dbProduct.
func fromDomainProduct(product *domain.Product) *dbProduct {
	return &dbProduct{
		ID:     product.ID,
		Ticker: product.Ticker,
		Name:   product.Name,
		ISIN:   product.ISIN,
	}
}

// GetProducts retrieves all products ordered by ticker.
func (repo *Repository) GetProducts() ([]*domain.Product, error) {
	var dbProducts []*dbProduct
	query := `SELECT id, ticker, name, isin FROM products ORDER BY ticker, id`

	err := repo.dbConn.Select(&dbProducts, query)
	if err != nil {
		return nil, fmt.Errorf("getting products: %w", err)
	}

	products := make([]*domain.Product, len(dbProducts))
	for i, p := range dbProducts {
		products[i] = toDomainProduct(p)
	}
	return products, nil
}

// GetProduct retrieves a single product by ID.
func (repo *Repository) GetProduct(id int64) (*domain.Product, error) {
	var p dbProduct
	query := `SELECT id, ticker, name, isin FROM products WHERE id = ?`

	err := repo.dbConn.Get(&p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("getting product %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return toDomainProduct(&p), nil
}

// GetProductByTicker retrieves the first product registered under ticker.
func (repo *Repository) GetProductByTicker(ticker string) (*domain.Product, error) {
	var p dbProduct
	query := `SELECT id, ticker, name, isin FROM products WHERE ticker = ? ORDER BY id LIMIT 1`

	err := repo.dbConn.Get(&p, query, ticker)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("getting product with ticker %s: %w", ticker, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting product with ticker %s: %w", ticker, err)
	}
	return toDomainProduct(&p), nil
}

// InsertProduct stores a new product and returns the generated ID.
func (repo *Repository) InsertProduct(product *domain.Product) (int64, error) {
	query := `INSERT INTO products (ticker, name, isin) VALUES (:ticker, :name, :isin)`

	result, err := repo.dbConn.NamedExec(query, fromDomainProduct(product))
	if err != nil {
		return 0, fmt.Errorf("inserting product %s: %w", product.Ticker, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fetching product id: %w", err)
	}
	return id, nil
}

// UpdateProduct overwrites ticker, name and ISIN of an existing product.
func (repo *Repository) UpdateProduct(product *domain.Product) error {
	query := `UPDATE products SET ticker = :ticker, name = :name, isin = :isin WHERE id = :id`

	result, err := repo.dbConn.NamedExec(query, fromDomainProduct(product))
	if err != nil {
		return fmt.Errorf("updating product %d: %w", product.ID, err)
	}
	return expectRows(result, "product", product.ID)
}

// DeleteProduct removes a product; dividends and sector links cascade.
func (repo *Repository) DeleteProduct(id int64) error {
	query := `DELETE FROM products WHERE id = ?`

	result, err := repo.dbConn.Exec(query, id)
	if err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	return expectRows(result, "product", id)
}

// GetProductsWithSectors retrieves every product with its sectors.
func (repo *Repository) GetProductsWithSectors() ([]*domain.ProductWithSectors, error) {
	products, err := repo.GetProducts()
	if err != nil {
		return nil, err
	}

	var links []struct {
		ProductID int64 `db:"product_id"`
		dbSector
	}
	query := `SELECT c.product_id, s.id, s.name, s.provider_name
	          FROM product_sector_cross_ref c
	          JOIN sectors s ON s.id = c.sector_id
	          ORDER BY s.name, s.id`
	if err := repo.dbConn.Select(&links, query); err != nil {
		return nil, fmt.Errorf("getting product sectors: %w", err)
	}

	byProduct := make(map[int64][]*domain.Sector)
	for i := range links {
		byProduct[links[i].ProductID] = append(byProduct[links[i].ProductID], toDomainSector(&links[i].dbSector))
	}

	result := make([]*domain.ProductWithSectors, len(products))
	for i, p := range products {
		sectors := byProduct[p.ID]
		if sectors == nil {
			sectors = []*domain.Sector{}
		}
		result[i] = &domain.ProductWithSectors{Product: p, Sectors: sectors}
	}
	return result, nil
}

// GetProductWithSectors retrieves one product with its sectors.
func (repo *Repository) GetProductWithSectors(id int64) (*domain.ProductWithSectors, error) {
	product, err := repo.GetProduct(id)
	if err != nil {
		return nil, err
	}
	sectors, err := repo.GetSectorsForProduct(id)
	if err != nil {
		return nil, err
	}
	return &domain.ProductWithSectors{Product: product, Sectors: sectors}, nil
}

// GetProductsWithDividends retrieves every product with its dividends ordered by date.
func (repo *Repository) GetProductsWithDividends() ([]*domain.ProductWithDividends, error) {
	products, err := repo.GetProducts()
	if err != nil {
		return nil, err
	}
	dividends, err := repo.GetDividends()
	if err != nil {
		return nil, err
	}

	byProduct := make(map[int64][]*domain.Dividend)
	for _, d := range dividends {
		byProduct[d.ProductID] = append(byProduct[d.ProductID], d)
	}

	result := make([]*domain.ProductWithDividends, len(products))
	for i, p := range products {
		divs := byProduct[p.ID]
		if divs == nil {
			divs = []*domain.Dividend{}
		}
		result[i] = &domain.ProductWithDividends{Product: p, Dividends: divs}
	}
	return result, nil
}

// GetProductWithDividends retrieves one product with its dividends ordered by date.
func (repo *Repository) GetProductWithDividends(id int64) (*domain.ProductWithDividends, error) {
	product, err := repo.GetProduct(id)
	if err != nil {
		return nil, err
	}
	dividends, err := repo.GetDividendsByProduct(id)
	if err != nil {
		return nil, err
	}
	return &domain.ProductWithDividends{Product: product, Dividends: dividends}, nil
}

// expectRows turns an update or delete that touched nothing into domain.ErrNotFound.
func expectRows(result sql.Result, entity string, id any) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("no %s found with ID %v: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}
