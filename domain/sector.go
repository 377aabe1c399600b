package domain

// SectorRepository defines the interface for managing sectors and the
// many-to-many association between sectors and products.
type SectorRepository interface {
	// GetSectors retrieves all sectors ordered by name.
	GetSectors() ([]*Sector, error)

	// GetSector retrieves a sector by ID. It returns ErrNotFound if it does not exist.
	GetSector(id int64) (*Sector, error)

	// InsertSector stores a new sector and returns its generated ID.
	InsertSector(sector *Sector) (int64, error)

	// UpdateSector overwrites the name and provider of an existing sector.
	UpdateSector(sector *Sector) error

	// DeleteSector removes a sector and its product links. Products are kept.
	DeleteSector(id int64) error

	// AddSectorToProduct links a product to a sector. Linking twice is a no-op.
	AddSectorToProduct(productID, sectorID int64) error

	// RemoveSectorFromProduct removes a single product/sector link.
	RemoveSectorFromProduct(productID, sectorID int64) error

	// RemoveAllSectorsFromProduct removes every sector link of a product.
	RemoveAllSectorsFromProduct(productID int64) error

	// GetSectorsForProduct retrieves the sectors a product belongs to, ordered by name.
	GetSectorsForProduct(productID int64) ([]*Sector, error)

	// SetProductSectors replaces the sector links of a product in a single transaction.
	SetProductSectors(productID int64, sectorIDs []int64) error
}

// Sector is a user-defined grouping label for products.
type Sector struct {
	ID           int64  // Database identifier.
	Name         string // Label shown to the user, e.g. "Energy".
	ProviderName string // Market or data provider the label refers to, e.g. "NYSE".
}
