package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/petshop-orders-api/internal/domains/pets/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/pets/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists pets in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// petRecord maps the pet aggregate to the pets table.
type petRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	Code      string    `gorm:"column:code;size:64"`
	Name      string    `gorm:"column:name"`
	Species   string    `gorm:"column:species;index"`
	Breed     string    `gorm:"column:breed"`
	Price     float64   `gorm:"column:price"`
	ImageURL  string    `gorm:"column:image_url"`
	Available bool      `gorm:"column:available;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;index"`
}

func (petRecord) TableName() string { return "pets" }

// Save inserts or updates catalog fields. Availability is only written on insert.
func (r *Repository) Save(ctx context.Context, pet *domain.Pet) (*domain.Pet, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, errors.New("pet is nil")
	}
	if err := pet.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(pet)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"code":       record.Code,
				"name":       record.Name,
				"species":    record.Species,
				"breed":      record.Breed,
				"price":      record.Price,
				"image_url":  record.ImageURL,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Pet, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record petRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// CompareAndSetAvailable issues a single conditional UPDATE; the row is only
// touched when available still holds the expected value.
func (r *Repository) CompareAndSetAvailable(ctx context.Context, id string, expected, next bool) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	result := r.db.WithContext(ctx).
		Model(&petRecord{}).
		Where("id = ? AND available = ?", id, expected).
		Updates(map[string]any{
			"available":  next,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&petRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, ports.ErrNotFound
	}
	return false, nil
}

func (r *Repository) ListUnavailable(ctx context.Context, cutoff time.Time) ([]*domain.Pet, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []petRecord
	if err := r.db.WithContext(ctx).
		Where("available = ? AND updated_at < ?", false, cutoff).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	pets := make([]*domain.Pet, 0, len(records))
	for i := range records {
		pets = append(pets, records[i].toDomain())
	}
	return pets, nil
}

// ReleaseIfStale repeats the ListUnavailable predicate inside the UPDATE so a
// hold taken after the listing survives.
func (r *Repository) ReleaseIfStale(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	result := r.db.WithContext(ctx).
		Model(&petRecord{}).
		Where("id = ? AND available = ? AND updated_at < ?", id, false, cutoff).
		Updates(map[string]any{
			"available":  true,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres pet repository not configured")
	}
	return nil
}

func toRecord(pet *domain.Pet) petRecord {
	return petRecord{
		ID:        pet.ID,
		Code:      pet.Code,
		Name:      pet.Name,
		Species:   pet.Species,
		Breed:     pet.Breed,
		Price:     pet.Price,
		ImageURL:  pet.ImageURL,
		Available: pet.Available,
	}
}

func (r petRecord) toDomain() *domain.Pet {
	return &domain.Pet{
		ID:        r.ID,
		Code:      r.Code,
		Name:      r.Name,
		Species:   r.Species,
		Breed:     r.Breed,
		Price:     r.Price,
		ImageURL:  r.ImageURL,
		Available: r.Available,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
