package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ref-check/internal/mailer"
	"ref-check/internal/metrics"
	"ref-check/internal/models"
	"ref-check/internal/scoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReferencesService handles citation edges and the two best-effort side
// effects of creating one: AI scoring and the notification email.
type ReferencesService struct {
	db     *gorm.DB
	log    *zap.Logger
	scorer scoring.Client
	mail   mailer.Client
}

// NewReferencesService creates a new references service
func NewReferencesService(db *gorm.DB, log *zap.Logger, scorer scoring.Client, mail mailer.Client) *ReferencesService {
	return &ReferencesService{db: db, log: log, scorer: scorer, mail: mail}
}

// ReferenceCreateInput is the citation edge creation payload.
type ReferenceCreateInput struct {
	CitedFromID          uint    `json:"cited_from_id" binding:"required"`
	CitedToID            uint    `json:"cited_to_id" binding:"required"`
	Content              string  `json:"content" binding:"required"`
	CitationContent      string  `json:"citation_content"`
	IfKeyReference       bool    `json:"if_key_reference"`
	IfSecondaryReference bool    `json:"if_secondary_reference"`
	AuthorComment        *string `json:"author_comment"`
}

// ReferenceOut is the serialized citation edge, with both endpoint titles for
// display.
type ReferenceOut struct {
	models.Reference
	CitedFromTitle string `json:"cited_from_title"`
	CitedToTitle   string `json:"cited_to_title"`
}

// Create validates both endpoint articles, persists the edge and then runs the
// scoring and notification callouts in sequence. Both callouts are advisory:
// any failure is logged and the create still succeeds. The edge row is
// committed before either callout runs, and the score write-back is its own
// best-effort commit, so a crash in between leaves a null score and no email —
// that is accepted, not rolled back.
func (s *ReferencesService) Create(ctx context.Context, in ReferenceCreateInput) (*ReferenceOut, error) {
	var citing, cited models.Article
	if err := s.db.First(&citing, in.CitedFromID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: citing article %d", ErrNotFound, in.CitedFromID)
		}
		return nil, err
	}
	if err := s.db.First(&cited, in.CitedToID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cited article %d", ErrNotFound, in.CitedToID)
		}
		return nil, err
	}

	ref := models.Reference{
		CitedFromID:          in.CitedFromID,
		CitedToID:            in.CitedToID,
		Content:              in.Content,
		CitationContent:      in.CitationContent,
		IfKeyReference:       in.IfKeyReference,
		IfSecondaryReference: in.IfSecondaryReference,
		AuthorComment:        in.AuthorComment,
	}
	if err := s.db.Create(&ref).Error; err != nil {
		return nil, err
	}
	metrics.ReferencesCreated.Inc()

	s.scoreReference(ctx, &ref, citing, cited)
	s.notifyCitedAuthor(ctx, ref, citing, cited)

	return &ReferenceOut{Reference: ref, CitedFromTitle: citing.Title, CitedToTitle: cited.Title}, nil
}

// scoreReference runs the scoring callout and writes the score back in its own
// commit. On any failure the score stays null.
func (s *ReferencesService) scoreReference(ctx context.Context, ref *models.Reference, citing, cited models.Article) {
	result, err := s.scorer.Score(ctx, scoring.CitationInput{
		CitingTitle:      citing.Title,
		CitingSubject:    citing.Subject,
		CitingContent:    citing.Content,
		CitedTitle:       cited.Title,
		CitedAuthors:     cited.AuthorNames,
		CitedSubject:     cited.Subject,
		CitationContext:  ref.CitationContent,
		ReferenceContent: ref.Content,
	})
	if err != nil {
		s.log.Warn("AI scoring failed, reference stays unscored",
			zap.Uint("reference_id", ref.ID), zap.Error(err))
		return
	}

	score := result.Score
	if err := s.db.Model(ref).Update("ai_rated_score", score).Error; err != nil {
		s.log.Error("Failed to write back AI score",
			zap.Uint("reference_id", ref.ID), zap.Error(err))
		return
	}
	ref.AIRatedScore = &score
	metrics.ReferencesScored.Inc()
}

// notifyCitedAuthor emails the cited article's corresponding author. Failures
// are logged and swallowed.
func (s *ReferencesService) notifyCitedAuthor(ctx context.Context, ref models.Reference, citing, cited models.Article) {
	var recipient models.Author
	if err := s.db.First(&recipient, cited.CorrespondingAuthorID).Error; err != nil {
		s.log.Warn("Could not resolve corresponding author for notification",
			zap.Uint("reference_id", ref.ID),
			zap.Uint("article_id", cited.ID),
			zap.Error(err))
		return
	}

	notice := mailer.CitationNotice{
		RecipientName:        recipient.Name,
		CitingTitle:          citing.Title,
		CitingJournal:        citing.PublishedJournal,
		CitingAuthors:        citing.AuthorNames,
		CitedTitle:           cited.Title,
		CitationContext:      ref.CitationContent,
		Score:                ref.AIRatedScore,
		IfKeyReference:       ref.IfKeyReference,
		IfSecondaryReference: ref.IfSecondaryReference,
	}

	err := s.mail.Send(ctx, mailer.Message{
		ToEmail: recipient.Email,
		ToName:  recipient.Name,
		Subject: notice.Subject(),
		HTML:    notice.HTML(),
	})
	if err != nil {
		s.log.Warn("Citation notification email failed",
			zap.Uint("reference_id", ref.ID), zap.Error(err))
		return
	}
	metrics.NotificationsSent.Inc()
}

// GetByID returns one reference or ErrNotFound.
func (s *ReferencesService) GetByID(id uint) (*ReferenceOut, error) {
	var ref models.Reference
	err := s.db.Preload("CitedFrom").Preload("CitedTo").First(&ref, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reference %d", ErrNotFound, id)
		}
		return nil, err
	}
	return serializeReference(ref), nil
}

// ListFrom returns every reference made by the given article.
func (s *ReferencesService) ListFrom(articleID uint) ([]ReferenceOut, error) {
	return s.list("cited_from_id = ?", articleID)
}

// ListTo returns every reference pointing at the given article.
func (s *ReferencesService) ListTo(articleID uint) ([]ReferenceOut, error) {
	return s.list("cited_to_id = ?", articleID)
}

func (s *ReferencesService) list(cond string, articleID uint) ([]ReferenceOut, error) {
	var refs []models.Reference
	err := s.db.Preload("CitedFrom").Preload("CitedTo").
		Where(cond, articleID).
		Order("id").
		Find(&refs).Error
	if err != nil {
		return nil, err
	}
	out := make([]ReferenceOut, 0, len(refs))
	for i := range refs {
		out = append(out, *serializeReference(refs[i]))
	}
	return out, nil
}

// patchableReferenceFields is the PATCH allow-list: human feedback, the
// author's note, the context, the two flags and post-hoc score corrections.
var patchableReferenceFields = map[string]bool{
	"feedback":               true,
	"author_comment":         true,
	"citation_content":       true,
	"if_key_reference":       true,
	"if_secondary_reference": true,
	"ai_rated_score":         true,
}

// Patch applies only the fields present in updates. Absent fields stay
// untouched; nullable fields set to explicit null are cleared. A patched score
// must be an integer in [0,10] or null.
func (s *ReferencesService) Patch(id uint, updates map[string]interface{}) (*ReferenceOut, error) {
	var ref models.Reference
	if err := s.db.First(&ref, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reference %d", ErrNotFound, id)
		}
		return nil, err
	}

	apply := map[string]interface{}{}
	for key, value := range updates {
		if !patchableReferenceFields[key] {
			return nil, fmt.Errorf("%w: field %q is not updatable", ErrValidation, key)
		}
		switch key {
		case "if_key_reference", "if_secondary_reference":
			b, ok := value.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a boolean", ErrValidation, key)
			}
			apply[key] = b
		case "ai_rated_score":
			if value == nil {
				apply[key] = nil
				continue
			}
			num, ok := value.(json.Number)
			if !ok {
				return nil, fmt.Errorf("%w: ai_rated_score must be an integer or null", ErrValidation)
			}
			score, err := num.Int64()
			if err != nil || score < 0 || score > 10 {
				return nil, fmt.Errorf("%w: ai_rated_score must be an integer in [0,10]", ErrValidation)
			}
			apply[key] = int(score)
		default: // feedback, author_comment, citation_content
			if value == nil {
				apply[key] = nil
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
		if err := s.db.Model(&ref).Updates(apply).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

func serializeReference(ref models.Reference) *ReferenceOut {
	out := &ReferenceOut{Reference: ref}
	if ref.CitedFrom != nil {
		out.CitedFromTitle = ref.CitedFrom.Title
	}
	if ref.CitedTo != nil {
		out.CitedToTitle = ref.CitedTo.Title
	}
	out.CitedFrom = nil
	out.CitedTo = nil
	return out
}
