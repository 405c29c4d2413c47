package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/trickdeck/trickdeckbackend/models"
)

type GormImageRepository struct {
	db *gorm.DB
}

func NewGormImageRepository(db *gorm.DB) ImageRepository {
	return &GormImageRepository{db: db}
}

func (r *GormImageRepository) Create(image *models.Image) error {
	if err := r.db.Create(image).Error; err != nil {
		return fmt.Errorf("failed to create image for figure %d: %w", image.FigureID, err)
	}
	return nil
}

// GetByID loads the image with its owning figure, which authorization needs
// to resolve the owner.
func (r *GormImageRepository) GetByID(id uint) (*models.Image, error) {
	var image models.Image
	if err := r.db.Preload("Figure").First(&image, id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *GormImageRepository) ListByFigure(figureID uint) ([]models.Image, error) {
	var images []models.Image
	err := r.db.Where("figure_id = ?", figureID).Order("created_at ASC").Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list images of figure %d: %w", figureID, err)
	}
	return images, nil
}

func (r *GormImageRepository) Update(image *models.Image) error {
	if err := r.db.Save(image).Error; err != nil {
		return fmt.Errorf("failed to update image %d: %w", image.ID, err)
	}
	return nil
}

func (r *GormImageRepository) Delete(id uint) error {
	if err := r.db.Delete(&models.Image{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete image %d: %w", id, err)
	}
	return nil
}
