package survey

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evalhub/evalhub/model"
)

// GetPublicSurvey is the respondent-facing read: no ownership gate, any
// holder of the id may fetch (and then answer) the survey.
func (s *Store) GetPublicSurvey(ctx context.Context, id int64) (model.Survey, error) {
	sv, err := loadSurvey(ctx, s.db, id)
	if err != nil {
		return model.Survey{}, err
	}
	sv.Owner = ""

	sv.Questions, err = loadQuestions(ctx, s.db, id)
	return sv, err
}

// QuestionResponse is one respondent's input for one question: a single
// value for closed single-choice and text questions, possibly several for
// checkbox questions, plus an optional comment.
type QuestionResponse struct {
	QuestionID int64
	Values     []string
	Comment    string
}

// Submit records one respondent's complete answer set as one Submission,
// atomically. A question yields an Answer row only when the respondent
// supplied a non-blank value or comment for it; a submission with every
// question left blank still creates the (empty) Submission.
func (s *Store) Submit(ctx context.Context, surveyID int64, responses []QuestionResponse) (model.Submission, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Submission{}, err
	}
	defer tx.Rollback()

	_, err = loadSurvey(ctx, tx, surveyID)
	if err != nil {
		return model.Submission{}, err
	}

	questions, err := loadQuestions(ctx, tx, surveyID)
	if err != nil {
		return model.Submission{}, err
	}
	byID := make(map[int64]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	created := time.Now().UTC()
	var submissionID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO submission (survey_id, created_at) VALUES (?, ?)
		RETURNING id`,
		surveyID,
		created,
	).Scan(&submissionID)
	if err != nil {
		return model.Submission{}, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answer (submission_id, question_id, value, comment_text)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return model.Submission{}, err
	}
	defer stmt.Close()

	for _, resp := range responses {
		q, ok := byID[resp.QuestionID]
		if !ok {
			return model.Submission{}, fmt.Errorf("%w: no question %d in survey %d", ErrInvalidAnswer, resp.QuestionID, surveyID)
		}

		values := dropBlank(resp.Values)
		err = validateValues(q, values)
		if err != nil {
			return model.Submission{}, err
		}

		comment := strings.TrimSpace(resp.Comment)
		if !q.Type.AllowsComment() {
			comment = ""
		}

		if len(values) == 0 && comment == "" {
			continue
		}

		value, err := encodeValue(q.Type, values)
		if err != nil {
			return model.Submission{}, err
		}
		_, err = stmt.ExecContext(ctx, submissionID, q.ID, value, comment)
		if err != nil {
			return model.Submission{}, err
		}
	}

	err = tx.Commit()
	if err != nil {
		return model.Submission{}, err
	}

	return model.Submission{ID: submissionID, SurveyID: surveyID, CreatedAt: created}, nil
}

// QuestionAnswers groups one question with its answers across all
// submissions, in submission insertion order.
type QuestionAnswers struct {
	Question model.Question `json:"question"`
	Answers  []model.Answer `json:"answers"`
}

// Responses aggregates a survey's answers by question (question creation
// order) for instructor display. Owner-gated.
func (s *Store) Responses(ctx context.Context, principal string, surveyID int64) ([]QuestionAnswers, error) {
	err := authorizeOwner(ctx, s.db, surveyID, principal)
	if err != nil {
		return nil, err
	}

	questions, err := loadQuestions(ctx, s.db, surveyID)
	if err != nil {
		return nil, err
	}

	answers, err := loadAnswers(ctx, s.db, surveyID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[int64][]model.Answer, len(questions))
	for _, a := range answers {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}

	grouped := make([]QuestionAnswers, len(questions))
	for i, q := range questions {
		qa := QuestionAnswers{Question: q, Answers: byQuestion[q.ID]}
		if qa.Answers == nil {
			qa.Answers = []model.Answer{}
		}
		grouped[i] = qa
	}
	return grouped, nil
}

func loadAnswers(ctx context.Context, q querier, surveyID int64) ([]model.Answer, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT a.id, a.submission_id, a.question_id, a.value, a.comment_text
		FROM answer a
		INNER JOIN submission sub ON (sub.id = a.submission_id)
		WHERE sub.survey_id = ?
		ORDER BY a.question_id, a.submission_id`,
		surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := []model.Answer{}
	for rows.Next() {
		var a model.Answer
		var value string
		err = rows.Scan(&a.ID, &a.SubmissionID, &a.QuestionID, &value, &a.Comment)
		if err != nil {
			return nil, err
		}
		a.Values, err = decodeValue(value)
		if err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func validateValues(q model.Question, values []string) error {
	if len(values) == 0 {
		return nil
	}
	if !q.Type.MultiSelect() && len(values) > 1 {
		return fmt.Errorf("%w: question %d takes a single value", ErrInvalidAnswer, q.ID)
	}
	if q.Type == model.TypeText {
		return nil
	}
	for _, v := range values {
		if !containsOption(q.Options, v) {
			return fmt.Errorf("%w: %q is not an option of question %d", ErrInvalidAnswer, v, q.ID)
		}
	}
	return nil
}

func containsOption(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

func dropBlank(values []string) []string {
	kept := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			kept = append(kept, v)
		}
	}
	return kept
}
