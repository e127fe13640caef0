package models

import "time"

// Article represents a publication in the citation graph.
//
// AuthorNames and Keywords are denormalized display caches. The AuthorArticle
// link rows are the source of truth for authorship; the strings are recomputed
// on every write and never hand-edited.
type Article struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Title            string    `json:"title" gorm:"not null"`
	Content          string    `json:"content" gorm:"not null;type:text"`
	PublishedJournal string    `json:"published_journal"`
	PublishedDate    time.Time `json:"published_date"`
	AuthorNames      string    `json:"author_names" gorm:"not null"`
	Subject          string    `json:"subject"`
	Keywords         string    `json:"keywords"` // comma-joined

	CorrespondingAuthorID uint `json:"corresponding_author_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	CorrespondingAuthor *Author         `json:"-" gorm:"foreignKey:CorrespondingAuthorID"`
	AuthorLinks         []AuthorArticle `json:"-" gorm:"foreignKey:ArticleID"`
	OutgoingReferences  []Reference     `json:"-" gorm:"foreignKey:CitedFromID"`
	IncomingReferences  []Reference     `json:"-" gorm:"foreignKey:CitedToID"`
}

// TableName sets the table name for the Article model
func (Article) TableName() string {
	return "articles"
}
