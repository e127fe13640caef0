package services

import (
	"context"
	"testing"
	"time"

	"ref-check/internal/mailer"
	"ref-check/internal/models"
	"ref-check/internal/scoring"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// fakeScorer stands in for the Gemini callout.
type fakeScorer struct {
	result *scoring.Result
	err    error
	calls  int
	lastIn scoring.CitationInput
}

func (f *fakeScorer) Score(ctx context.Context, in scoring.CitationInput) (*scoring.Result, error) {
	f.calls++
	f.lastIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeScorer) Enabled() bool { return true }

// fakeMailer captures outbound notifications.
type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) Enabled() bool { return true }

// createAuthor inserts an author directly, bypassing the service.
func createAuthor(t *testing.T, db *gorm.DB, name, email string) models.Author {
	t.Helper()
	author := models.Author{Name: name, Email: email, Password: "x"}
	if err := db.Create(&author).Error; err != nil {
		t.Fatalf("Failed to create test author: %v", err)
	}
	return author
}

// createArticle inserts an article directly, bypassing the service.
func createArticle(t *testing.T, db *gorm.DB, title string, correspondingID uint) models.Article {
	t.Helper()
	article := models.Article{
		Title:                 title,
		Content:               "content of " + title,
		AuthorNames:           "Test Author",
		PublishedDate:         time.Now(),
		CorrespondingAuthorID: correspondingID,
	}
	if err := db.Create(&article).Error; err != nil {
		t.Fatalf("Failed to create test article: %v", err)
	}
	return article
}
