package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/trickdeck/trickdeckbackend/models"
)

type GormCommentRepository struct {
	db *gorm.DB
}

func NewGormCommentRepository(db *gorm.DB) CommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(comment *models.Comment) error {
	if err := r.db.Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment on figure %d: %w", comment.FigureID, err)
	}
	return nil
}

func (r *GormCommentRepository) GetByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.Preload("Author").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *GormCommentRepository) ListByFigure(figureID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("Author").
		Where("figure_id = ?", figureID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of figure %d: %w", figureID, err)
	}
	return comments, nil
}

func (r *GormCommentRepository) CountByFigure(figureID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).Where("figure_id = ?", figureID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count comments of figure %d: %w", figureID, err)
	}
	return count, nil
}

func (r *GormCommentRepository) Delete(id uint) error {
	if err := r.db.Delete(&models.Comment{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, err)
	}
	return nil
}
