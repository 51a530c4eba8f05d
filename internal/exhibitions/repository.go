package exhibitions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ivdgroup/medlab-backend/pkg/db/models"
)

// Repository wires exhibition persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all exhibitions, newest start date first.
func (r *Repository) List(ctx context.Context) ([]models.Exhibition, error) {
	var rows []models.Exhibition
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Order("id").
		Find(&rows).
		Error
	return rows, err
}

// FindByID loads one exhibition.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Exhibition, error) {
	var exhibition models.Exhibition
	if err := r.db.WithContext(ctx).First(&exhibition, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &exhibition, nil
}

// Create inserts a new exhibition.
func (r *Repository) Create(ctx context.Context, exhibition *models.Exhibition) error {
	return r.db.WithContext(ctx).Create(exhibition).Error
}

// Update saves the full exhibition row.
func (r *Repository) Update(ctx context.Context, exhibition *models.Exhibition) error {
	return r.db.WithContext(ctx).Save(exhibition).Error
}

// Delete removes an exhibition, reporting whether a row was deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Exhibition{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
