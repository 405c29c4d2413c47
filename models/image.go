package models

import "time"

// Image is a photo attached to a figure. URL stays null until the uploaded
// file has been moved into the media store.
type Image struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	URL      *string `json:"url,omitempty"`
	Alt      *string `json:"alt,omitempty"`
	Filename string  `json:"filename" gorm:"not null"`

	// captured from EXIF at upload time when the photo carries it
	TakenAt     *int64  `json:"taken_at,omitempty"`
	CameraModel *string `json:"camera_model,omitempty"`

	FigureID uint    `json:"figure_id" gorm:"not null;index"`
	Figure   *Figure `json:"-" gorm:"foreignKey:FigureID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Image) TableName() string {
	return "images"
}
