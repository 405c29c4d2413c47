package repository

import "github.com/trickdeck/trickdeckbackend/models"

// UserRepository defines the methods for user data operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByResetToken(token string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
}

// FigureRepository defines the methods for figure data operations
type FigureRepository interface {
	Create(figure *models.Figure) error
	GetByID(id uint) (*models.Figure, error)
	GetBySlug(slug string) (*models.Figure, error)
	Update(figure *models.Figure) error
	Delete(id uint) error

	// main image management
	SetMainImage(figureID uint, imageID *uint) error
	// ClearMainImage nulls the reference only when it currently points at imageID
	ClearMainImage(figureID, imageID uint) error
}

// ImageRepository defines the methods for image data operations
type ImageRepository interface {
	Create(image *models.Image) error
	GetByID(id uint) (*models.Image, error)
	ListByFigure(figureID uint) ([]models.Image, error)
	Update(image *models.Image) error
	Delete(id uint) error
}

// VideoRepository defines the methods for video data operations
type VideoRepository interface {
	Create(video *models.Video) error
	GetByID(id uint) (*models.Video, error)
	ListByFigure(figureID uint) ([]models.Video, error)
	Update(video *models.Video) error
	Delete(id uint) error
}

// CommentRepository defines the methods for comment data operations
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id uint) (*models.Comment, error)
	ListByFigure(figureID uint) ([]models.Comment, error)
	CountByFigure(figureID uint) (int64, error)
	Delete(id uint) error
}
