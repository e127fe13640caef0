// Package seed loads a small demo dataset: five authors, three articles and a
// citation 3-cycle between them. The cycle is deliberate — anything built on
// the citation graph has to tolerate cycles.
package seed

import (
	"fmt"
	"time"

	"ref-check/internal/auth"
	"ref-check/internal/models"

	"gorm.io/gorm"
)

type authorSpec struct {
	name      string
	email     string
	institute string
	job       string
}

var seedAuthors = []authorSpec{
	{"Alice Zhang", "alice.zhang@example.com", "MIT", "Research Scientist"},
	{"Bob Smith", "bob.smith@example.com", "Stanford", "Professor"},
	{"Carol Lee", "carol.lee@example.com", "Harvard", "Postdoc"},
	{"David Wong", "david.wong@example.com", "EDAM", "Engineer"},
	{"Eve Chen", "eve.chen@example.com", "MIT", "Data Scientist"},
}

// Run populates the database. All seeded authors share the password
// "password123"; the seeder is for local development only.
func Run(db *gorm.DB) error {
	hash, err := auth.HashPassword("password123")
	if err != nil {
		return err
	}

	authors := make([]models.Author, len(seedAuthors))
	for i, spec := range seedAuthors {
		authors[i] = models.Author{
			Name:      spec.name,
			Email:     spec.email,
			Password:  hash,
			Institute: spec.institute,
			Job:       spec.job,
		}
	}
	if err := db.Create(&authors).Error; err != nil {
		return fmt.Errorf("failed to seed authors: %w", err)
	}

	alice, bob, carol := authors[0], authors[1], authors[2]
	david, eve := authors[3], authors[4]

	articles := []models.Article{
		{
			Title:                 "Quantum Computing Advances",
			Content:               "Exploring new qubit architectures and error correction techniques.",
			PublishedJournal:      "Journal of Quantum Tech",
			PublishedDate:         time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
			AuthorNames:           "Alice Zhang, Bob Smith",
			Subject:               "Quantum Computing",
			Keywords:              "quantum, qubits, error correction",
			CorrespondingAuthorID: alice.ID,
		},
		{
			Title:                 "Machine Learning in Energy Systems",
			Content:               "Applying ML to predict energy consumption patterns.",
			PublishedJournal:      "Energy Journal",
			PublishedDate:         time.Date(2023, 11, 10, 0, 0, 0, 0, time.UTC),
			AuthorNames:           "Bob Smith, Carol Lee",
			Subject:               "Machine Learning",
			Keywords:              "machine learning, energy, forecasting",
			CorrespondingAuthorID: bob.ID,
		},
		{
			Title:                 "Data-Driven Optimization",
			Content:               "Optimization ideas inspired by AI and quantum computing.",
			PublishedJournal:      "Optimization Letters",
			PublishedDate:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			AuthorNames:           "Carol Lee, David Wong, Eve Chen",
			Subject:               "Optimization",
			Keywords:              "optimization, AI",
			CorrespondingAuthorID: carol.ID,
		},
	}
	if err := db.Create(&articles).Error; err != nil {
		return fmt.Errorf("failed to seed articles: %w", err)
	}

	links := []models.AuthorArticle{
		{AuthorID: alice.ID, ArticleID: articles[0].ID, AuthorOrder: 1},
		{AuthorID: bob.ID, ArticleID: articles[0].ID, AuthorOrder: 2},
		{AuthorID: bob.ID, ArticleID: articles[1].ID, AuthorOrder: 1},
		{AuthorID: carol.ID, ArticleID: articles[1].ID, AuthorOrder: 2},
		{AuthorID: carol.ID, ArticleID: articles[2].ID, AuthorOrder: 1},
		{AuthorID: david.ID, ArticleID: articles[2].ID, AuthorOrder: 2},
		{AuthorID: eve.ID, ArticleID: articles[2].ID, AuthorOrder: 3},
	}
	if err := db.Create(&links).Error; err != nil {
		return fmt.Errorf("failed to seed author links: %w", err)
	}

	// 1 -> 2 -> 3 -> 1
	references := []models.Reference{
		{
			CitedFromID:     articles[0].ID,
			CitedToID:       articles[1].ID,
			Content:         "Smith et al., Machine Learning in Energy Systems, Energy Journal, 2023.",
			CitationContent: "Our control stack borrows the consumption forecasting approach of [2].",
			IfKeyReference:  true,
		},
		{
			CitedFromID:          articles[1].ID,
			CitedToID:            articles[2].ID,
			Content:              "Lee et al., Data-Driven Optimization, Optimization Letters, 2024.",
			CitationContent:      "We reuse the optimization framing introduced in [3].",
			IfSecondaryReference: true,
		},
		{
			CitedFromID:     articles[2].ID,
			CitedToID:       articles[0].ID,
			Content:         "Zhang et al., Quantum Computing Advances, Journal of Quantum Tech, 2024.",
			CitationContent: "Quantum-inspired heuristics follow the architecture of [1].",
		},
	}
	if err := db.Create(&references).Error; err != nil {
		return fmt.Errorf("failed to seed references: %w", err)
	}
	return nil
}

// Clear deletes all seeded rows, children first.
func Clear(db *gorm.DB) error {
	for _, model := range []interface{}{
		&models.Reference{},
		&models.AuthorArticle{},
		&models.Article{},
		&models.Author{},
	} {
		if err := db.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
