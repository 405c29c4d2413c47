package models

import "time"

// Comment is a user remark on a figure.
type Comment struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Content string `json:"content" gorm:"not null;size:255"`

	AuthorID uint  `json:"author_id" gorm:"not null;index"`
	Author   *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`

	FigureID uint    `json:"figure_id" gorm:"not null;index"`
	Figure   *Figure `json:"-" gorm:"foreignKey:FigureID"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName explicitly sets the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}
