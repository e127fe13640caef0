package services

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"ref-check/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ArticlesService handles articles and their authorship links.
type ArticlesService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewArticlesService creates a new articles service
func NewArticlesService(db *gorm.DB, log *zap.Logger) *ArticlesService {
	return &ArticlesService{db: db, log: log}
}

// ArticleCreateInput is the article creation payload. AuthorNames and
// AuthorEmails are aligned lists of equal length; a null email marks a
// co-author not registered in the system.
type ArticleCreateInput struct {
	Title                    string     `json:"title" binding:"required"`
	Content                  string     `json:"content" binding:"required"`
	PublishedJournal         string     `json:"published_journal"`
	PublishedDate            *time.Time `json:"published_date"`
	Subject                  string     `json:"subject"`
	Keywords                 []string   `json:"keywords"`
	CorrespondingAuthorEmail string     `json:"corresponding_author_email" binding:"required"`
	AuthorNames              []string   `json:"author_names" binding:"required"`
	AuthorEmails             []*string  `json:"author_emails"`
}

// ArticleOut is the serialized article. AuthorIDs is aligned with AuthorNames;
// a null id marks an external co-author with no link row.
type ArticleOut struct {
	ID                    uint      `json:"id"`
	Title                 string    `json:"title"`
	Content               string    `json:"content"`
	PublishedJournal      string    `json:"published_journal"`
	PublishedDate         time.Time `json:"published_date"`
	Subject               string    `json:"subject"`
	Keywords              []string  `json:"keywords"`
	CorrespondingAuthorID uint      `json:"corresponding_author_id"`
	AuthorNames           []string  `json:"author_names"`
	AuthorIDs             []*uint   `json:"author_ids"`
}

// Create validates the aligned author lists, resolves the corresponding author
// by email, persists the article and links every author known to the system.
// Unknown co-authors are recorded only in the denormalized name string
// (silent partial linking).
func (s *ArticlesService) Create(in ArticleCreateInput) (*ArticleOut, error) {
	if len(in.AuthorNames) != len(in.AuthorEmails) {
		return nil, fmt.Errorf("%w: author_names and author_emails length mismatch", ErrValidation)
	}
	if len(in.AuthorNames) == 0 {
		return nil, fmt.Errorf("%w: at least one author name is required", ErrValidation)
	}
	// The comma is the join delimiter of the denormalized author_names cache;
	// a name containing one would shift the name/id alignment on read-back.
	for _, name := range in.AuthorNames {
		if strings.Contains(name, ",") {
			return nil, fmt.Errorf("%w: author name %q must not contain a comma", ErrValidation, name)
		}
	}

	var corresponding models.Author
	err := s.db.Where("email = ?", strings.TrimSpace(in.CorrespondingAuthorEmail)).First(&corresponding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: corresponding author %q", ErrNotFound, in.CorrespondingAuthorEmail)
		}
		return nil, err
	}

	// Resolve each aligned (name, email) pair. A missing or unknown email
	// leaves the entry name-only.
	resolved := make([]*models.Author, len(in.AuthorNames))
	for i, email := range in.AuthorEmails {
		if email == nil || strings.TrimSpace(*email) == "" {
			continue
		}
		var a models.Author
		if err := s.db.Where("email = ?", strings.TrimSpace(*email)).First(&a).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		resolved[i] = &a
	}

	publishedDate := time.Now()
	if in.PublishedDate != nil {
		publishedDate = *in.PublishedDate
	}

	article := models.Article{
		Title:                 in.Title,
		Content:               in.Content,
		PublishedJournal:      in.PublishedJournal,
		PublishedDate:         publishedDate,
		AuthorNames:           strings.Join(in.AuthorNames, ", "),
		Subject:               in.Subject,
		Keywords:              strings.Join(in.Keywords, ", "),
		CorrespondingAuthorID: corresponding.ID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&article).Error; err != nil {
			return err
		}
		seen := map[uint]bool{}
		for i, a := range resolved {
			if a == nil || seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			link := models.AuthorArticle{AuthorID: a.ID, ArticleID: article.ID, AuthorOrder: i + 1}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := serializeArticle(article, in.AuthorNames, nil)
	out.AuthorIDs = make([]*uint, len(resolved))
	for i, a := range resolved {
		if a != nil {
			id := a.ID
			out.AuthorIDs[i] = &id
		}
	}
	return out, nil
}

// GetByID returns one article or ErrNotFound.
func (s *ArticlesService) GetByID(id uint) (*ArticleOut, error) {
	var article models.Article
	if err := s.db.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: article %d", ErrNotFound, id)
		}
		return nil, err
	}
	return s.serialize(article)
}

// Delete removes the article, its authorship links and every reference that
// starts or ends at it.
func (s *ArticlesService) Delete(id uint) error {
	var article models.Article
	if err := s.db.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: article %d", ErrNotFound, id)
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cited_from_id = ? OR cited_to_id = ?", id, id).Delete(&models.Reference{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.AuthorArticle{}).Error; err != nil {
			return err
		}
		return tx.Delete(&article).Error
	})
}

// ListByAuthor returns every article reachable via the author's link rows.
func (s *ArticlesService) ListByAuthor(authorID uint) ([]ArticleOut, error) {
	var author models.Author
	if err := s.db.First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: author %d", ErrNotFound, authorID)
		}
		return nil, err
	}

	var articles []models.Article
	err := s.db.
		Joins("JOIN author_article ON author_article.article_id = articles.id").
		Where("author_article.author_id = ?", authorID).
		Order("articles.id").
		Find(&articles).Error
	if err != nil {
		return nil, err
	}

	out := make([]ArticleOut, 0, len(articles))
	for i := range articles {
		serialized, err := s.serialize(articles[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *serialized)
	}
	return out, nil
}

// Search filters articles by title, subject and keywords. All matches are
// case-insensitive substring matches; the fields are AND-combined while the
// comma-separated keywords are OR-combined. An empty result set fails with
// ErrNotFound rather than returning an empty list: callers rely on the 404 to
// tell "no matches" apart from a malformed query.
func (s *ArticlesService) Search(title, subject, keyword string) ([]ArticleOut, error) {
	query := s.db.Model(&models.Article{})

	if title != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(title)+"%")
	}
	if subject != "" {
		query = query.Where("LOWER(subject) LIKE ?", "%"+strings.ToLower(subject)+"%")
	}
	if keyword != "" {
		var clauses []string
		var args []interface{}
		for _, kw := range strings.Split(keyword, ",") {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			clauses = append(clauses, "LOWER(keywords) LIKE ?")
			args = append(args, "%"+strings.ToLower(kw)+"%")
		}
		if len(clauses) > 0 {
			query = query.Where(strings.Join(clauses, " OR "), args...)
		}
	}

	var articles []models.Article
	if err := query.Order("id").Find(&articles).Error; err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("%w: no articles match the search", ErrNotFound)
	}

	out := make([]ArticleOut, 0, len(articles))
	for i := range articles {
		serialized, err := s.serialize(articles[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *serialized)
	}
	return out, nil
}

// Random returns one uniformly-random article id, optionally filtered by a
// case-insensitive subject substring.
func (s *ArticlesService) Random(subject string) (uint, error) {
	query := s.db.Model(&models.Article{})
	if subject != "" {
		query = query.Where("LOWER(subject) LIKE ?", "%"+strings.ToLower(subject)+"%")
	}

	var ids []uint
	if err := query.Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no articles match subject %q", ErrNotFound, subject)
	}
	return ids[rand.Intn(len(ids))], nil
}

// serialize builds an ArticleOut from the article's link rows, ordered by
// author_order.
func (s *ArticlesService) serialize(article models.Article) (*ArticleOut, error) {
	var links []models.AuthorArticle
	err := s.db.
		Where("article_id = ?", article.ID).
		Order("author_order").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return serializeArticle(article, nil, links), nil
}

// serializeArticle converts an article into an ArticleOut. The name list comes
// from the denormalized author_names string so external co-authors survive;
// link rows are realigned to it via author_order, leaving a null id wherever
// no author is linked at that position.
func serializeArticle(article models.Article, inputNames []string, links []models.AuthorArticle) *ArticleOut {
	out := &ArticleOut{
		ID:                    article.ID,
		Title:                 article.Title,
		Content:               article.Content,
		PublishedJournal:      article.PublishedJournal,
		PublishedDate:         article.PublishedDate,
		Subject:               article.Subject,
		Keywords:              splitList(article.Keywords),
		CorrespondingAuthorID: article.CorrespondingAuthorID,
		AuthorNames:           []string{},
		AuthorIDs:             []*uint{},
	}

	if inputNames != nil {
		out.AuthorNames = inputNames
		return out
	}

	out.AuthorNames = splitList(article.AuthorNames)
	out.AuthorIDs = make([]*uint, len(out.AuthorNames))
	for _, link := range links {
		pos := link.AuthorOrder - 1
		if pos < 0 || pos >= len(out.AuthorIDs) {
			continue
		}
		id := link.AuthorID
		out.AuthorIDs[pos] = &id
	}
	return out
}

// splitList splits a comma-joined denormalized string back into a list.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
