package models

// AuthorArticle is a junction row linking one Author to one Article.
// The composite primary key makes (author_id, article_id) unique.
// AuthorOrder is the 1-based position in the article's author list.
type AuthorArticle struct {
	AuthorID    uint `json:"author_id" gorm:"primaryKey;autoIncrement:false"`
	ArticleID   uint `json:"article_id" gorm:"primaryKey;autoIncrement:false"`
	AuthorOrder int  `json:"author_order"`

	Author  *Author  `json:"-" gorm:"foreignKey:AuthorID"`
	Article *Article `json:"-" gorm:"foreignKey:ArticleID"`
}

// TableName sets the table name for the AuthorArticle model
func (AuthorArticle) TableName() string {
	return "author_article"
}
