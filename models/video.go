package models

import (
	"regexp"
	"time"
)

// permissive on attributes and inner content, strict on the tag pair itself
var iframePattern = regexp.MustCompile(`(?is)<iframe[^>]*>.*</iframe>`)

// Video is an embedded clip attached to a figure.
type Video struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	EmbedCode string  `json:"embed_code" gorm:"not null"`
	FigureID  uint    `json:"figure_id" gorm:"not null;index"`
	Figure    *Figure `json:"-" gorm:"foreignKey:FigureID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Video) TableName() string {
	return "videos"
}

// ValidEmbedCode reports whether code contains a well-formed iframe fragment.
func ValidEmbedCode(code string) bool {
	return iframePattern.MatchString(code)
}

// HasValidEmbed reports whether the video's embed code contains an iframe
// fragment.
func (v *Video) HasValidEmbed() bool {
	return ValidEmbedCode(v.EmbedCode)
}
