package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/trickdeck/trickdeckbackend/models"
)

type GormFigureRepository struct {
	db *gorm.DB
}

func NewGormFigureRepository(db *gorm.DB) FigureRepository {
	return &GormFigureRepository{db: db}
}

func (r *GormFigureRepository) Create(figure *models.Figure) error {
	if err := r.db.Create(figure).Error; err != nil {
		return fmt.Errorf("failed to create figure %s: %w", figure.Name, err)
	}
	return nil
}

func (r *GormFigureRepository) GetByID(id uint) (*models.Figure, error) {
	var figure models.Figure
	err := r.db.
		Preload("Author").
		Preload("Images").
		Preload("Videos").
		Preload("Comments.Author").
		Preload("MainImage").
		First(&figure, id).Error
	if err != nil {
		return nil, err
	}
	return &figure, nil
}

func (r *GormFigureRepository) GetBySlug(slug string) (*models.Figure, error) {
	var figure models.Figure
	err := r.db.
		Preload("Author").
		Preload("Images").
		Preload("Videos").
		Preload("Comments.Author").
		Preload("MainImage").
		Where("slug = ?", slug).
		First(&figure).Error
	if err != nil {
		return nil, err
	}
	return &figure, nil
}

func (r *GormFigureRepository) Update(figure *models.Figure) error {
	if err := r.db.Save(figure).Error; err != nil {
		return fmt.Errorf("failed to update figure %d: %w", figure.ID, err)
	}
	return nil
}

// SetMainImage points the figure's main image reference at imageID, or nulls
// it when imageID is nil. Membership of the image in the figure's own set is
// the caller's responsibility.
func (r *GormFigureRepository) SetMainImage(figureID uint, imageID *uint) error {
	err := r.db.Model(&models.Figure{}).
		Where("id = ?", figureID).
		Update("main_image_id", imageID).Error
	if err != nil {
		return fmt.Errorf("failed to set main image of figure %d: %w", figureID, err)
	}
	return nil
}

// ClearMainImage nulls the figure's main image reference, but only when it
// currently points at imageID. Used before deleting the referenced image so
// the delete cannot leave a dangling pointer.
func (r *GormFigureRepository) ClearMainImage(figureID, imageID uint) error {
	err := r.db.Model(&models.Figure{}).
		Where("id = ? AND main_image_id = ?", figureID, imageID).
		Update("main_image_id", nil).Error
	if err != nil {
		return fmt.Errorf("failed to clear main image of figure %d: %w", figureID, err)
	}
	return nil
}

// Delete removes the figure and everything it owns in one transaction. The
// self-referential main image pointer is nulled first so the owned image rows
// can go without a foreign key conflict.
func (r *GormFigureRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Figure{}).
			Where("id = ?", id).
			Update("main_image_id", nil).Error
		if err != nil {
			return fmt.Errorf("failed to detach main image of figure %d: %w", id, err)
		}
		if err := tx.Where("figure_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments of figure %d: %w", id, err)
		}
		if err := tx.Where("figure_id = ?", id).Delete(&models.Video{}).Error; err != nil {
			return fmt.Errorf("failed to delete videos of figure %d: %w", id, err)
		}
		if err := tx.Where("figure_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return fmt.Errorf("failed to delete images of figure %d: %w", id, err)
		}
		if err := tx.Delete(&models.Figure{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete figure %d: %w", id, err)
		}
		return nil
	})
}
