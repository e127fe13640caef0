package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"ref-check/internal/models"
	"ref-check/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReferenceRequiresBothEndpoints(t *testing.T) {
	db := setupTestDB(t)
	scorer := &fakeScorer{err: errors.New("unused")}
	mail := &fakeMailer{}
	service := NewReferencesService(db, testLogger(), scorer, mail)

	alice := createAuthor(t, db, "Alice", "alice@x.com")
	p := createArticle(t, db, "P", alice.ID)

	_, err := service.Create(context.Background(), ReferenceCreateInput{
		CitedFromID: p.ID, CitedToID: 99999, Content: "cites nothing",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = service.Create(context.Background(), ReferenceCreateInput{
		CitedFromID: 99999, CitedToID: p.ID, Content: "cites nothing",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	// No row was written for either failed create.
	var count int64
	db.Model(&models.Reference{}).Count(&count)
	assert.Zero(t, count)
}

// The end-to-end scenario: two authors, two articles, a citation between them.
func TestCreateReferenceScenario(t *testing.T) {
	db := setupTestDB(t)
	score := 8
	scorer := &fakeScorer{result: &scoring.Result{Score: score, Reasoning: "relevant and accurate"}}
	mail := &fakeMailer{}
	service := NewReferencesService(db, testLogger(), scorer, mail)

	alice := createAuthor(t, db, "Alice", "alice@x.com")
	bob := createAuthor(t, db, "Bob", "bob@x.com")
	p := createArticle(t, db, "P", alice.ID)
	q := createArticle(t, db, "Q", bob.ID)

	out, err := service.Create(context.Background(), ReferenceCreateInput{
		CitedFromID:     p.ID,
		CitedToID:       q.ID,
		Content:         "cites Q",
		CitationContent: "as shown in [1]",
		IfKeyReference:  true,
	})
	require.NoError(t, err)
	assert.NotZero(t, out.ID)
	assert.Equal(t, "P", out.CitedFromTitle)
	assert.Equal(t, "Q", out.CitedToTitle)

	// The score was written back in its own commit.
	require.NotNil(t, out.AIRatedScore)
	assert.Equal(t, score, *out.AIRatedScore)
	var stored models.Reference
	require.NoError(t, db.First(&stored, out.ID).Error)
	require.NotNil(t, stored.AIRatedScore)
	assert.Equal(t, score, *stored.AIRatedScore)

	// The prompt was built from both articles and the reference.
	assert.Equal(t, 1, scorer.calls)
	assert.Equal(t, "P", scorer.lastIn.CitingTitle)
	assert.Equal(t, "Q", scorer.lastIn.CitedTitle)
	assert.Equal(t, "cites Q", scorer.lastIn.ReferenceContent)

	// The cited article's corresponding author was notified.
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "bob@x.com", mail.sent[0].ToEmail)
	assert.Contains(t, mail.sent[0].Subject, "Q")
	assert.Contains(t, mail.sent[0].HTML, "8/10")

	// Both directional listings contain the edge.
	from, err := service.ListFrom(p.ID)
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, out.ID, from[0].ID)

	to, err := service.ListTo(q.ID)
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, out.ID, to[0].ID)
}

func TestCreateReferenceSurvivesCalloutFailures(t *testing.T) {
	db := setupTestDB(t)
	scorer := &fakeScorer{err: errors.New("model returned non-JSON body")}
	mail := &fakeMailer{err: errors.New("mail API returned HTTP 500")}
	service := NewReferencesService(db, testLogger(), scorer, mail)

	alice := createAuthor(t, db, "Alice", "alice@x.com")
	p := createArticle(t, db, "P", alice.ID)
	q := createArticle(t, db, "Q", alice.ID)

	out, err := service.Create(context.Background(), ReferenceCreateInput{
		CitedFromID: p.ID, CitedToID: q.ID, Content: "cites Q",
	})
	require.NoError(t, err, "callout failures must never fail the create")
	assert.Nil(t, out.AIRatedScore, "score stays null when scoring fails")
	assert.Empty(t, mail.sent)
}

// Self-citation currently succeeds. Recorded as current behavior; whether it
// should be rejected is an open product question.
func TestSelfCitationIsAllowed(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferencesService(db, testLogger(), &fakeScorer{err: errors.New("off")}, &fakeMailer{})

	alice := createAuthor(t, db, "Alice", "alice@x.com")
	p := createArticle(t, db, "P", alice.ID)

	out, err := service.Create(context.Background(), ReferenceCreateInput{
		CitedFromID: p.ID, CitedToID: p.ID, Content: "cites itself",
	})
	require.NoError(t, err)
	assert.Equal(t, out.CitedFromID, out.CitedToID)

	from, err := service.ListFrom(p.ID)
	require.NoError(t, err)
	to, err := service.ListTo(p.ID)
	require.NoError(t, err)
	assert.Len(t, from, 1)
	assert.Len(t, to, 1)
}

func TestGetReferenceByID(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferencesService(db, testLogger(), &fakeScorer{err: errors.New("off")}, &fakeMailer{})

	alice := createAuthor(t, db, "Alice", "alice@x.com")
	p := createArticle(t, db, "P", alice.ID)
	q := createArticle(t, db, "Q", alice.ID)
	ref := models.Reference{CitedFromID: p.ID, CitedToID: q.ID, Content: "cites Q"}
	require.NoError(t, db.Create(&ref).Error)

	out, err := service.GetByID(ref.ID)
	require.NoError(t, err)
	assert.Equal(t, "P", out.CitedFromTitle)
	assert.Equal(t, "Q", out.CitedToTitle)

	_, err = service.GetByID(99999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPatchReferenceUnsetVsNull(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferencesService(db, testLogger(), &fakeScorer{err: errors.New("off")}, &fakeMailer{})

	alice := createAuthor(t, db, "Alice", "alice@x.com")
	p := createArticle(t, db, "P", alice.ID)
	q := createArticle(t, db, "Q", alice.ID)
	comment := "initial comment"
	ref := models.Reference{CitedFromID: p.ID, CitedToID: q.ID, Content: "cites Q", AuthorComment: &comment}
	require.NoError(t, db.Create(&ref).Error)

	// Set feedback, leave everything else untouched.
	out, err := service.Patch(ref.ID, map[string]interface{}{"feedback": "looks correct"})
	require.NoError(t, err)
	require.NotNil(t, out.Feedback)
	assert.Equal(t, "looks correct", *out.Feedback)
	require.NotNil(t, out.AuthorComment)
	assert.Equal(t, comment, *out.AuthorComment)

	// Explicit null clears a nullable field.
	out, err = service.Patch(ref.ID, map[string]interface{}{"author_comment": nil})
	require.NoError(t, err)
	assert.Nil(t, out.AuthorComment)
	require.NotNil(t, out.Feedback, "omitted field stays set")

	// Flags can be corrected post-hoc.
	out, err = service.Patch(ref.ID, map[string]interface{}{"if_key_reference": true})
	require.NoError(t, err)
	assert.True(t, out.IfKeyReference)
	assert.False(t, out.IfSecondaryReference)
}

func TestPatchReferenceScoreValidation(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferencesService(db, testLogger(), &fakeScorer{err: errors.New("off")}, &fakeMailer{})

	alice := createAuthor(t, db, "Alice", "alice@x.com")
	p := createArticle(t, db, "P", alice.ID)
	ref := models.Reference{CitedFromID: p.ID, CitedToID: p.ID, Content: "c"}
	require.NoError(t, db.Create(&ref).Error)

	out, err := service.Patch(ref.ID, map[string]interface{}{"ai_rated_score": json.Number("7")})
	require.NoError(t, err)
	require.NotNil(t, out.AIRatedScore)
	assert.Equal(t, 7, *out.AIRatedScore)

	_, err = service.Patch(ref.ID, map[string]interface{}{"ai_rated_score": json.Number("11")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = service.Patch(ref.ID, map[string]interface{}{"ai_rated_score": json.Number("6.5")})
	assert.ErrorIs(t, err, ErrValidation)

	out, err = service.Patch(ref.ID, map[string]interface{}{"ai_rated_score": nil})
	require.NoError(t, err)
	assert.Nil(t, out.AIRatedScore)

	// The endpoint ids are not patchable.
	_, err = service.Patch(ref.ID, map[string]interface{}{"cited_to_id": json.Number("1")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNotificationBodyMentionsBothArticles(t *testing.T) {
	db := setupTestDB(t)
	mail := &fakeMailer{}
	service := NewReferencesService(db, testLogger(), &fakeScorer{err: errors.New("off")}, mail)

	alice := createAuthor(t, db, "Alice", "alice@x.com")
	bob := createAuthor(t, db, "Bob", "bob@x.com")
	p := createArticle(t, db, "Citing Work", alice.ID)
	q := createArticle(t, db, "Cited Work", bob.ID)

	_, err := service.Create(context.Background(), ReferenceCreateInput{
		CitedFromID:     p.ID,
		CitedToID:       q.ID,
		Content:         "cites",
		CitationContent: "see the seminal treatment in [4]",
	})
	require.NoError(t, err)

	require.Len(t, mail.sent, 1)
	body := mail.sent[0].HTML
	assert.Contains(t, body, "Citing Work")
	assert.Contains(t, body, "Cited Work")
	assert.Contains(t, body, "seminal treatment")
	assert.True(t, strings.Contains(body, "not available"), "missing score must be called out")
}
