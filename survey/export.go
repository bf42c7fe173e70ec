package survey

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// ExportCSV pivots a survey's submissions into tabular form: header row
// "Submission ID" plus one column per question (creation order), then one
// row per submission (creation order). A cell holds the answer value
// (multi-select joined with ", "), with any comment appended as
// " | Comment: <comment>"; a question left unanswered in a submission is
// an empty cell. Zero submissions still emit the header-only file, and the
// column count is always 1 + number of questions. Owner-gated.
func (s *Store) ExportCSV(ctx context.Context, principal string, surveyID int64, w io.Writer) error {
	err := authorizeOwner(ctx, s.db, surveyID, principal)
	if err != nil {
		return err
	}

	questions, err := loadQuestions(ctx, s.db, surveyID)
	if err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id FROM submission WHERE survey_id = ? ORDER BY id", surveyID)
	if err != nil {
		return err
	}
	defer rows.Close()

	submissionIDs := []int64{}
	for rows.Next() {
		var id int64
		err = rows.Scan(&id)
		if err != nil {
			return err
		}
		submissionIDs = append(submissionIDs, id)
	}
	err = rows.Err()
	if err != nil {
		return err
	}

	answers, err := loadAnswers(ctx, s.db, surveyID)
	if err != nil {
		return err
	}
	cells := make(map[int64]map[int64]string)
	for _, a := range answers {
		cell := strings.Join(a.Values, ", ")
		if a.Comment != "" {
			cell += " | Comment: " + a.Comment
		}
		if cells[a.SubmissionID] == nil {
			cells[a.SubmissionID] = make(map[int64]string)
		}
		cells[a.SubmissionID][a.QuestionID] = cell
	}

	cw := csv.NewWriter(w)

	header := make([]string, 0, len(questions)+1)
	header = append(header, "Submission ID")
	for _, q := range questions {
		header = append(header, q.Text)
	}
	err = cw.Write(header)
	if err != nil {
		return err
	}

	for _, submissionID := range submissionIDs {
		row := make([]string, 0, len(questions)+1)
		row = append(row, strconv.FormatInt(submissionID, 10))
		for _, q := range questions {
			row = append(row, cells[submissionID][q.ID])
		}
		err = cw.Write(row)
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
