package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/trickdeck/trickdeckbackend/utils"
)

// Figure represents a named snowboard trick with its media and discussion.
// It corresponds to the 'figures' table.
type Figure struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description" gorm:"not null"`
	GroupLabel  string `json:"group_label" gorm:"not null;index"`

	AuthorID uint  `json:"author_id" gorm:"not null;index"`
	Author   *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`

	// MainImageID, when set, must reference one of the figure's own images
	MainImageID *uint  `json:"main_image_id,omitempty"`
	MainImage   *Image `json:"main_image,omitempty" gorm:"foreignKey:MainImageID"`

	Images   []Image   `json:"images,omitempty" gorm:"foreignKey:FigureID;constraint:OnDelete:CASCADE"`
	Videos   []Video   `json:"videos,omitempty" gorm:"foreignKey:FigureID;constraint:OnDelete:CASCADE"`
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:FigureID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Figure) TableName() string {
	return "figures"
}

// BeforeSave keeps the slug derived from the current name.
func (f *Figure) BeforeSave(tx *gorm.DB) error {
	f.Slug = utils.Slugify(f.Name)
	return nil
}

// OwnsImage reports whether imageID belongs to this figure's own image set.
// Images must be loaded.
func (f *Figure) OwnsImage(imageID uint) bool {
	for i := range f.Images {
		if f.Images[i].ID == imageID {
			return true
		}
	}
	return false
}
