package survey

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/evalhub/evalhub/model"
)

// Store is the survey entity store and its consistency rules: question
// admission, owner-only access, atomic answer collection and export.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db}
}

const defaultSurveyName = "Untitled Survey"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) CreateSurvey(ctx context.Context, owner, name string) (model.Survey, error) {
	if owner == "" {
		return model.Survey{}, ErrForbidden
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultSurveyName
	}

	created := time.Now().UTC()
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO survey (owner, name, created_at) VALUES (?, ?, ?)
		RETURNING id`,
		owner,
		name,
		created,
	).Scan(&id)
	if err != nil {
		return model.Survey{}, err
	}

	return model.Survey{ID: id, Owner: owner, Name: name, CreatedAt: created}, nil
}

func (s *Store) ListSurveys(ctx context.Context, owner string) ([]model.Survey, error) {
	if owner == "" {
		return nil, ErrForbidden
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, name, created_at
		FROM survey
		WHERE owner = ?
		ORDER BY created_at DESC, id DESC`,
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	surveys := []model.Survey{}
	for rows.Next() {
		var sv model.Survey
		var ownerCol sql.NullString
		err = rows.Scan(&sv.ID, &ownerCol, &sv.Name, &sv.CreatedAt)
		if err != nil {
			return nil, err
		}
		sv.Owner = ownerCol.String
		surveys = append(surveys, sv)
	}
	return surveys, rows.Err()
}

// GetSurvey returns a survey with its questions in creation order.
// Missing surveys yield ErrNotFound; surveys not owned by principal
// (including unowned legacy surveys) yield ErrForbidden.
func (s *Store) GetSurvey(ctx context.Context, principal string, id int64) (model.Survey, error) {
	err := authorizeOwner(ctx, s.db, id, principal)
	if err != nil {
		return model.Survey{}, err
	}

	sv, err := loadSurvey(ctx, s.db, id)
	if err != nil {
		return model.Survey{}, err
	}

	sv.Questions, err = loadQuestions(ctx, s.db, id)
	return sv, err
}

// RenameSurvey is the only mutation any entity supports after creation.
func (s *Store) RenameSurvey(ctx context.Context, principal string, id int64, name string) (model.Survey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultSurveyName
	}

	err := authorizeOwner(ctx, s.db, id, principal)
	if err != nil {
		return model.Survey{}, err
	}

	_, err = s.db.ExecContext(ctx, "UPDATE survey SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return model.Survey{}, err
	}

	return loadSurvey(ctx, s.db, id)
}

// DeleteSurvey cascades to questions, submissions and answers.
func (s *Store) DeleteSurvey(ctx context.Context, principal string, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = authorizeOwner(ctx, tx, id, principal)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM survey WHERE id = ?", id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// AddQuestion applies the admission rule: non-blank text, no duplicate text
// within the survey, options present exactly when the type calls for them.
// The new question takes the next position in insertion order.
func (s *Store) AddQuestion(ctx context.Context, principal string, surveyID int64, text string, qtype model.QuestionType, options []string) (model.Question, error) {
	if strings.TrimSpace(text) == "" {
		return model.Question{}, ErrEmptyQuestion
	}
	if qtype == "" {
		qtype = model.TypeText
	}
	if !qtype.Valid() {
		return model.Question{}, fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, qtype)
	}
	if qtype.HasOptions() && len(options) == 0 {
		return model.Question{}, fmt.Errorf("%w: %s questions need options", ErrInvalidQuestion, qtype)
	}
	if !qtype.HasOptions() && len(options) > 0 {
		return model.Question{}, fmt.Errorf("%w: %s questions take no options", ErrInvalidQuestion, qtype)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Question{}, err
	}
	defer tx.Rollback()

	err = authorizeOwner(ctx, tx, surveyID, principal)
	if err != nil {
		return model.Question{}, err
	}

	var dup int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM question WHERE survey_id = ? AND text = ?", surveyID, text).Scan(&dup)
	if err == nil {
		return model.Question{}, ErrDuplicateQuestion
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Question{}, err
	}

	var optionsJson any
	if len(options) > 0 {
		encoded, err := json.Marshal(options)
		if err != nil {
			return model.Question{}, err
		}
		optionsJson = string(encoded)
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO question (survey_id, text, type, options) VALUES (?, ?, ?, ?)
		RETURNING id`,
		surveyID,
		text,
		string(qtype),
		optionsJson,
	).Scan(&id)
	if err != nil {
		// two simultaneous identical texts race on the unique index;
		// the loser surfaces as a plain duplicate
		if isUniqueViolation(err) {
			return model.Question{}, ErrDuplicateQuestion
		}
		return model.Question{}, err
	}

	err = tx.Commit()
	if err != nil {
		return model.Question{}, err
	}

	return model.Question{ID: id, SurveyID: surveyID, Text: text, Type: qtype, Options: options}, nil
}

// authorizeOwner gates instructor-side access: ErrNotFound for missing ids,
// ErrForbidden for everyone but the owner. A non-owner can thus tell an
// existing survey (403) from a missing one (404).
func authorizeOwner(ctx context.Context, q querier, surveyID int64, principal string) error {
	var owner sql.NullString
	err := q.QueryRowContext(ctx, "SELECT owner FROM survey WHERE id = ?", surveyID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if principal == "" || !owner.Valid || owner.String != principal {
		return ErrForbidden
	}
	return nil
}

func loadSurvey(ctx context.Context, q querier, id int64) (model.Survey, error) {
	var sv model.Survey
	var owner sql.NullString
	err := q.QueryRowContext(ctx, "SELECT id, owner, name, created_at FROM survey WHERE id = ?", id).
		Scan(&sv.ID, &owner, &sv.Name, &sv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Survey{}, ErrNotFound
	}
	if err != nil {
		return model.Survey{}, err
	}
	sv.Owner = owner.String
	return sv, nil
}

// loadQuestions always returns creation order (oldest first).
func loadQuestions(ctx context.Context, q querier, surveyID int64) ([]model.Question, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, survey_id, text, type, options
		FROM question
		WHERE survey_id = ?
		ORDER BY id`,
		surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var qu model.Question
		var opts sql.NullString
		err = rows.Scan(&qu.ID, &qu.SurveyID, &qu.Text, &qu.Type, &opts)
		if err != nil {
			return nil, err
		}
		if opts.Valid && opts.String != "" {
			err = json.Unmarshal([]byte(opts.String), &qu.Options)
			if err != nil {
				return nil, err
			}
		}
		questions = append(questions, qu)
	}
	return questions, rows.Err()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
