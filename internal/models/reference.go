package models

import "time"

// Reference is a directed citation edge from the citing article (CitedFromID)
// to the cited article (CitedToID). Self-loops are allowed and the overall
// graph may contain cycles, so it must be treated as a general directed
// multigraph, never assumed to be a DAG.
type Reference struct {
	ID          uint `json:"id" gorm:"primaryKey"`
	CitedFromID uint `json:"cited_from_id" gorm:"not null;index"`
	CitedToID   uint `json:"cited_to_id" gorm:"not null;index"`

	Content         string `json:"content" gorm:"not null;type:text"`
	CitationContent string `json:"citation_content" gorm:"type:text"`

	// Independent flags: both may be true or false at the same time.
	IfKeyReference       bool `json:"if_key_reference"`
	IfSecondaryReference bool `json:"if_secondary_reference"`

	// Null until the scoring callout succeeds; always in [0,10] once set.
	AIRatedScore *int `json:"ai_rated_score"`

	Feedback      *string `json:"feedback" gorm:"type:text"`
	AuthorComment *string `json:"author_comment" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	CitedFrom *Article `json:"-" gorm:"foreignKey:CitedFromID"`
	CitedTo   *Article `json:"-" gorm:"foreignKey:CitedToID"`
}

// TableName sets the table name for the Reference model
func (Reference) TableName() string {
	return "references"
}
