package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/divreminder/divreminder/domain"
)

var _ domain.SectorRepository = (*Repository)(nil)

// dbSector represents a sector as stored in the database.
type dbSector struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	ProviderName string `db:"provider_name"`
}

// toDomainSector converts a dbSector to a domain.Sector.
func toDomainSector(dbSector *dbSector) *domain.Sector {
	return &domain.Sector{
		ID:           dbSector.ID,
		Name:         dbSector.Name,
		ProviderName: dbSector.ProviderName,
	}
}

// GetSectors retrieves all sectors ordered by name.
func (repo *Repository) GetSectors() ([]*domain.Sector, error) {
	var dbSectors []*dbSector
	query := `SELECT id, name, provider_name FROM sectors ORDER BY name, id`

	err := repo.dbConn.Select(&dbSectors, query)
	if err != nil {
		return nil, fmt.Errorf("getting sectors: %w", err)
	}

	sectors := make([]*domain.Sector, len(dbSectors))
	for i, s := range dbSectors {
		sectors[i] = toDomainSector(s)
	}
	return sectors, nil
}

// GetSector retrieves a sector by ID.
func (repo *Repository) GetSector(id int64) (*domain.Sector, error) {
	var s dbSector
	query := `SELECT id, name, provider_name FROM sectors WHERE id = ?`

	err := repo.dbConn.Get(&s, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("getting sector %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting sector %d: %w", id, err)
	}
	return toDomainSector(&s), nil
}

// InsertSector stores a new sector and returns the generated ID.
func (repo *Repository) InsertSector(sector *domain.Sector) (int64, error) {
	query := `INSERT INTO sectors (name, provider_name) VALUES (?, ?)`

	result, err := repo.dbConn.Exec(query, sector.Name, sector.ProviderName)
	if err != nil {
		return 0, fmt.Errorf("creating sector %s: %w", sector.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fetching sector id: %w", err)
	}
	return id, nil
}

// UpdateSector overwrites the name and provider of a sector.
func (repo *Repository) UpdateSector(sector *domain.Sector) error {
	query := `UPDATE sectors SET name = ?, provider_name = ? WHERE id = ?`

	result, err := repo.dbConn.Exec(query, sector.Name, sector.ProviderName, sector.ID)
	if err != nil {
		return fmt.Errorf("updating sector %d: %w", sector.ID, err)
	}
	return expectRows(result, "sector", sector.ID)
}

// DeleteSector removes a sector. Links to products cascade, products are kept.
func (repo *Repository) DeleteSector(id int64) error {
	query := `DELETE FROM sectors WHERE id = ?`

	result, err := repo.dbConn.Exec(query, id)
	if err != nil {
		return fmt.Errorf("deleting sector %d: %w", id, err)
	}
	return expectRows(result, "sector", id)
}

// AddSectorToProduct links a product to a sector.
func (repo *Repository) AddSectorToProduct(productID, sectorID int64) error {
	query := `INSERT OR IGNORE INTO product_sector_cross_ref (product_id, sector_id) VALUES (?, ?)`

	_, err := repo.dbConn.Exec(query, productID, sectorID)
	if err != nil {
		return fmt.Errorf("linking product %d with sector %d: %w", productID, sectorID, err)
	}
	return nil
}

// RemoveSectorFromProduct removes a single link.
func (repo *Repository) RemoveSectorFromProduct(productID, sectorID int64) error {
	query := `DELETE FROM product_sector_cross_ref WHERE product_id = ? AND sector_id = ?`

	_, err := repo.dbConn.Exec(query, productID, sectorID)
	if err != nil {
		return fmt.Errorf("unlinking product %d from sector %d: %w", productID, sectorID, err)
	}
	return nil
}

// RemoveAllSectorsFromProduct removes every sector link of a product.
func (repo *Repository) RemoveAllSectorsFromProduct(productID int64) error {
	query := `DELETE FROM product_sector_cross_ref WHERE product_id = ?`

	_, err := repo.dbConn.Exec(query, productID)
	if err != nil {
		return fmt.Errorf("unlinking sectors of product %d: %w", productID, err)
	}
	return nil
}

// GetSectorsForProduct retrieves the sectors a product belongs to.
func (repo *Repository) GetSectorsForProduct(productID int64) ([]*domain.Sector, error) {
	var dbSectors []*dbSector
	query := `SELECT s.id, s.name, s.provider_name
	          FROM sectors s
	          JOIN product_sector_cross_ref c ON s.id = c.sector_id
	          WHERE c.product_id = ?
	          ORDER BY s.name, s.id`

	err := repo.dbConn.Select(&dbSectors, query, productID)
	if err != nil {
		return nil, fmt.Errorf("getting sectors of product %d: %w", productID, err)
	}

	sectors := make([]*domain.Sector, len(dbSectors))
	for i, s := range dbSectors {
		sectors[i] = toDomainSector(s)
	}
	return sectors, nil
}

// SetProductSectors replaces the sector links of a product atomically.
func (repo *Repository) SetProductSectors(productID int64, sectorIDs []int64) error {
	tx, err := repo.dbConn.Beginx()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM product_sector_cross_ref WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("unlinking sectors of product %d: %w", productID, err)
	}

	for _, sectorID := range sectorIDs {
		_, err := tx.Exec(`INSERT OR IGNORE INTO product_sector_cross_ref (product_id, sector_id) VALUES (?, ?)`, productID, sectorID)
		if err != nil {
			return fmt.Errorf("linking product %d with sector %d: %w", productID, sectorID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sectors of product %d: %w", productID, err)
	}
	return nil
}
