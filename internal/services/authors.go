package services

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"ref-check/internal/auth"
	"ref-check/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthorsService handles author accounts and their article links.
type AuthorsService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewAuthorsService creates a new authors service
func NewAuthorsService(db *gorm.DB, log *zap.Logger) *AuthorsService {
	return &AuthorsService{db: db, log: log}
}

// ArticleSummary is the {id, title} pair embedded in author responses.
type ArticleSummary struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// AuthorOut is an author record with its linked article summaries.
// The password hash is never part of it.
type AuthorOut struct {
	models.Author
	Articles []ArticleSummary `json:"articles"`
}

// AuthorCreateInput is the signup payload.
type AuthorCreateInput struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Institute string `json:"institute"`
	Job       string `json:"job"`
}

// Create validates the input, hashes the password and persists the author.
// A duplicate email fails with ErrConflict.
func (s *AuthorsService) Create(in AuthorCreateInput) (*AuthorOut, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name and password are required", ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: malformed email %q", ErrValidation, in.Email)
	}

	var count int64
	if err := s.db.Model(&models.Author{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: author with email %q", ErrConflict, in.Email)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	author := models.Author{
		Name:      in.Name,
		Email:     in.Email,
		Password:  hash,
		Institute: in.Institute,
		Job:       in.Job,
	}
	if err := s.db.Create(&author).Error; err != nil {
		// The pre-check above races with concurrent inserts; the unique index
		// is the real guard.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: author with email %q", ErrConflict, in.Email)
		}
		return nil, err
	}
	return &AuthorOut{Author: author, Articles: []ArticleSummary{}}, nil
}

// List returns all authors with their article summaries.
func (s *AuthorsService) List() ([]AuthorOut, error) {
	var authors []models.Author
	if err := s.db.Order("id").Find(&authors).Error; err != nil {
		return nil, err
	}
	out := make([]AuthorOut, 0, len(authors))
	for i := range authors {
		summaries, err := s.articleSummaries(authors[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, AuthorOut{Author: authors[i], Articles: summaries})
	}
	return out, nil
}

// GetByID returns one author or ErrNotFound.
func (s *AuthorsService) GetByID(id uint) (*AuthorOut, error) {
	var author models.Author
	if err := s.db.First(&author, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: author %d", ErrNotFound, id)
		}
		return nil, err
	}
	summaries, err := s.articleSummaries(author.ID)
	if err != nil {
		return nil, err
	}
	return &AuthorOut{Author: author, Articles: summaries}, nil
}

// GetByEmail returns one author with article summaries or ErrNotFound.
func (s *AuthorsService) GetByEmail(email string) (*AuthorOut, error) {
	var author models.Author
	if err := s.db.Where("email = ?", strings.TrimSpace(email)).First(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: author with email %q", ErrNotFound, email)
		}
		return nil, err
	}
	summaries, err := s.articleSummaries(author.ID)
	if err != nil {
		return nil, err
	}
	return &AuthorOut{Author: author, Articles: summaries}, nil
}

// Delete removes the author and all of its AuthorArticle links. Articles the
// author wrote are kept, including ones where they are the corresponding
// author; the dangling corresponding_author_id is accepted.
func (s *AuthorsService) Delete(id uint) error {
	var author models.Author
	if err := s.db.First(&author, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: author %d", ErrNotFound, id)
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("author_id = ?", id).Delete(&models.AuthorArticle{}).Error; err != nil {
			return err
		}
		return tx.Delete(&author).Error
	})
}

// patchableAuthorFields is the PATCH allow-list.
var patchableAuthorFields = map[string]bool{
	"name":      true,
	"email":     true,
	"password":  true,
	"institute": true,
	"job":       true,
}

// Patch applies only the fields present in updates. Absent fields stay
// untouched; institute/job set to explicit null are cleared. Name, email and
// password cannot be nulled, and a new password is re-hashed before storage.
func (s *AuthorsService) Patch(id uint, updates map[string]interface{}) (*AuthorOut, error) {
	var author models.Author
	if err := s.db.First(&author, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: author %d", ErrNotFound, id)
		}
		return nil, err
	}

	apply := map[string]interface{}{}
	for key, value := range updates {
		if !patchableAuthorFields[key] {
			return nil, fmt.Errorf("%w: field %q is not updatable", ErrValidation, key)
		}
		switch key {
		case "name", "email", "password":
			str, ok := value.(string)
			if !ok || str == "" {
				return nil, fmt.Errorf("%w: %s must be a non-empty string", ErrValidation, key)
			}
			if key == "email" {
				if _, err := mail.ParseAddress(str); err != nil {
					return nil, fmt.Errorf("%w: malformed email %q", ErrValidation, str)
				}
			}
			if key == "password" {
				hash, err := auth.HashPassword(str)
				if err != nil {
					return nil, err
				}
				str = hash
			}
			apply[key] = str
		case "institute", "job":
			if value == nil {
				apply[key] = "" // explicit null clears the field
				continue
			}
			str, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a string or null", ErrValidation, key)
			}
			apply[key] = str
		}
	}

	if len(apply) > 0 {
		if err := s.db.Model(&author).Updates(apply).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w: email already in use", ErrConflict)
			}
			return nil, err
		}
	}
	return s.GetByID(id)
}

// Authenticate checks the login credentials and returns the author. Unknown
// email and wrong password fail identically with ErrAuth.
func (s *AuthorsService) Authenticate(email, password string) (*AuthorOut, error) {
	var author models.Author
	if err := s.db.Where("email = ?", strings.TrimSpace(email)).First(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuth
		}
		return nil, err
	}
	if !auth.VerifyPassword(password, author.Password) {
		return nil, ErrAuth
	}
	summaries, err := s.articleSummaries(author.ID)
	if err != nil {
		return nil, err
	}
	return &AuthorOut{Author: author, Articles: summaries}, nil
}

// articleSummaries collects {id, title} for every article linked to the author.
func (s *AuthorsService) articleSummaries(authorID uint) ([]ArticleSummary, error) {
	var summaries []ArticleSummary
	err := s.db.Model(&models.Article{}).
		Select("articles.id, articles.title").
		Joins("JOIN author_article ON author_article.article_id = articles.id").
		Where("author_article.author_id = ?", authorID).
		Order("articles.id").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []ArticleSummary{}
	}
	return summaries, nil
}
