package model

import "time"

// QuestionType discriminates how a question is asked and answered.
// Closed types carry a list of options; text is free-form.
type QuestionType string

const (
	TypeText           QuestionType = "text"
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeRating         QuestionType = "rating"
	TypeCheckbox       QuestionType = "checkbox"
	TypeYesNo          QuestionType = "yes_no"
)

func (t QuestionType) Valid() bool {
	switch t {
	case TypeText, TypeMultipleChoice, TypeRating, TypeCheckbox, TypeYesNo:
		return true
	}
	return false
}

// HasOptions reports whether the type requires a non-empty option list.
func (t QuestionType) HasOptions() bool {
	return t.Valid() && t != TypeText
}

// MultiSelect reports whether a respondent may pick more than one value.
func (t QuestionType) MultiSelect() bool {
	return t == TypeCheckbox
}

// AllowsComment reports whether a free-form comment accompanies the answer.
// Text questions are already free-form, so they take no comment.
func (t QuestionType) AllowsComment() bool {
	return t.Valid() && t != TypeText
}

type Survey struct {
	ID        int64      `json:"id,omitempty"`
	Owner     string     `json:"owner,omitempty"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	Questions []Question `json:"questions,omitempty"`
}

type Question struct {
	ID       int64        `json:"id,omitempty"`
	SurveyID int64        `json:"survey_id,omitempty"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Options  []string     `json:"options,omitempty"`
}

// Submission groups the answers of one respondent, created atomically.
type Submission struct {
	ID        int64     `json:"id"`
	SurveyID  int64     `json:"survey_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Answer struct {
	ID           int64    `json:"id,omitempty"`
	SubmissionID int64    `json:"submission_id"`
	QuestionID   int64    `json:"question_id"`
	Values       []string `json:"values"`
	Comment      string   `json:"comment,omitempty"`
}

type User struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
