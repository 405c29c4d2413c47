package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/trickdeck/trickdeckbackend/models"
)

type GormVideoRepository struct {
	db *gorm.DB
}

func NewGormVideoRepository(db *gorm.DB) VideoRepository {
	return &GormVideoRepository{db: db}
}

func (r *GormVideoRepository) Create(video *models.Video) error {
	if err := r.db.Create(video).Error; err != nil {
		return fmt.Errorf("failed to create video for figure %d: %w", video.FigureID, err)
	}
	return nil
}

// GetByID loads the video with its owning figure for owner resolution.
func (r *GormVideoRepository) GetByID(id uint) (*models.Video, error) {
	var video models.Video
	if err := r.db.Preload("Figure").First(&video, id).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *GormVideoRepository) ListByFigure(figureID uint) ([]models.Video, error) {
	var videos []models.Video
	err := r.db.Where("figure_id = ?", figureID).Order("created_at ASC").Find(&videos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list videos of figure %d: %w", figureID, err)
	}
	return videos, nil
}

func (r *GormVideoRepository) Update(video *models.Video) error {
	if err := r.db.Save(video).Error; err != nil {
		return fmt.Errorf("failed to update video %d: %w", video.ID, err)
	}
	return nil
}

func (r *GormVideoRepository) Delete(id uint) error {
	if err := r.db.Delete(&models.Video{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete video %d: %w", id, err)
	}
	return nil
}
