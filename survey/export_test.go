package survey

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/evalhub/evalhub/model"
)

func exportCSV(t *testing.T, s *Store, principal string, surveyID int64) [][]string {
	t.Helper()

	var buf bytes.Buffer
	err := s.ExportCSV(context.Background(), principal, surveyID, &buf)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse exported csv: %v", err)
	}
	return records
}

func TestExportTwoQuestionsOneSubmission(t *testing.T) {
	s, _ := newTestStore(t, "alice@example.com")
	sv := mustCreateSurvey(t, s, "alice@example.com", "")
	q1 := mustAddQuestion(t, s, "alice@example.com", sv.ID, "Q1", model.TypeText, nil)
	q2 := mustAddQuestion(t, s, "alice@example.com", sv.ID, "Q2", model.TypeText, nil)

	_, err := s.Submit(context.Background(), sv.ID, []QuestionResponse{
		{QuestionID: q1.ID, Values: []string{"A1"}},
		{QuestionID: q2.ID, Values: []string{"A2"}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	var buf bytes.Buffer
	err = s.ExportCSV(context.Background(), "alice@example.com", sv.ID, &buf)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	want := "Submission ID,Q1,Q2\n1,A1,A2\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestExportHeaderOnlyWithoutSubmissions(t *testing.T) {
	s, _ := newTestStore(t, "alice@example.com")
	sv := mustCreateSurvey(t, s, "alice@example.com", "")
	mustAddQuestion(t, s, "alice@example.com", sv.ID, "Q1", model.TypeText, nil)

	records := exportCSV(t, s, "alice@example.com", sv.ID)
	if len(records) != 1 {
		t.Fatalf("got %d rows, want header only", len(records))
	}
	if len(records[0]) != 2 || records[0][0] != "Submission ID" || records[0][1] != "Q1" {
		t.Errorf("header: %v", records[0])
	}
}

func TestExportEmptyCellForUnansweredQuestion(t *testing.T) {
	s, _ := newTestStore(t, "alice@example.com")
	sv := mustCreateSurvey(t, s, "alice@example.com", "")
	q1 := mustAddQuestion(t, s, "alice@example.com", sv.ID, "Q1", model.TypeText, nil)
	q2 := mustAddQuestion(t, s, "alice@example.com", sv.ID, "Q2", model.TypeText, nil)

	_, err := s.Submit(context.Background(), sv.ID, []QuestionResponse{
		{QuestionID: q1.ID, Values: []string{"only the first"}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	_, err = s.Submit(context.Background(), sv.ID, []QuestionResponse{
		{QuestionID: q2.ID, Values: []string{"only the second"}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	records := exportCSV(t, s, "alice@example.com", sv.ID)
	if len(records) != 3 {
		t.Fatalf("got %d rows, want 3", len(records))
	}
	for i, row := range records {
		if len(row) != 3 {
			t.Errorf("row %d: got %d columns, want 3", i, len(row))
		}
	}
	if records[1][1] != "only the first" || records[1][2] != "" {
		t.Errorf("first submission row: %v", records[1])
	}
	if records[2][1] != "" || records[2][2] != "only the second" {
		t.Errorf("second submission row: %v", records[2])
	}
}

func TestExportAppendsCommentToCell(t *testing.T) {
	s, _ := newTestStore(t, "alice@example.com")
	sv := mustCreateSurvey(t, s, "alice@example.com", "")
	q := mustAddQuestion(t, s, "alice@example.com", sv.ID, "Rate this course", model.TypeMultipleChoice, []string{"Excellent", "Good"})

	_, err := s.Submit(context.Background(), sv.ID, []QuestionResponse{
		{QuestionID: q.ID, Values: []string{"Excellent"}, Comment: "Great capybara!"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	records := exportCSV(t, s, "alice@example.com", sv.ID)
	want := "Excellent | Comment: Great capybara!"
	if records[1][1] != want {
		t.Errorf("got %q, want %q", records[1][1], want)
	}
}

func TestExportJoinsMultiSelectValues(t *testing.T) {
	s, _ := newTestStore(t, "alice@example.com")
	sv := mustCreateSurvey(t, s, "alice@example.com", "")
	q := mustAddQuestion(t, s, "alice@example.com", sv.ID, "Topics?", model.TypeCheckbox, []string{"Capybara", "Capybaras", "Cap"})

	_, err := s.Submit(context.Background(), sv.ID, []QuestionResponse{
		{QuestionID: q.ID, Values: []string{"Capybara", "Cap"}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	records := exportCSV(t, s, "alice@example.com", sv.ID)
	if records[1][1] != "Capybara, Cap" {
		t.Errorf("got %q, want %q", records[1][1], "Capybara, Cap")
	}
}

func TestExportAccessControl(t *testing.T) {
	s, _ := newTestStore(t, "alice@example.com", "bob@example.com")
	sv := mustCreateSurvey(t, s, "alice@example.com", "")

	var buf bytes.Buffer
	err := s.ExportCSV(context.Background(), "bob@example.com", sv.ID, &buf)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner: got %v, want ErrForbidden", err)
	}

	err = s.ExportCSV(context.Background(), "alice@example.com", 999, &buf)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id: got %v, want ErrNotFound", err)
	}
}
