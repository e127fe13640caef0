package models

import "time"

// Author is a person who writes or corresponds on articles.
type Author struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"not null"`
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	Password  string `json:"-" gorm:"not null"` // bcrypt hash, never serialized
	Institute string `json:"institute"`
	Job       string `json:"job"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Junction rows linking this author to articles
	ArticleLinks []AuthorArticle `json:"-" gorm:"foreignKey:AuthorID"`
}

// TableName sets the table name for the Author model
func (Author) TableName() string {
	return "authors"
}
