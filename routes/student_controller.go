package routes

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"

	"github.com/evalhub/evalhub/app"
	"github.com/evalhub/evalhub/httpx"
	"github.com/evalhub/evalhub/log"
	"github.com/evalhub/evalhub/survey"
)

func TakeSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyIdParam(w, r)
		if !ok {
			return
		}

		sv, err := app.Surveys.GetPublicSurvey(r.Context(), surveyId)
		if err != nil {
			renderSurveyError(w, r, "db.get_survey", surveyId, err)
			return
		}

		render.JSON(w, r, sv)
	}
}

type answerPayload struct {
	QuestionID int64           `json:"question_id"`
	Value      json.RawMessage `json:"value"`
	Comment    string          `json:"comment"`
}

// parseAnswerValue accepts a JSON string for single-valued answers or a
// JSON array of strings for checkbox multi-select.
func parseAnswerValue(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}

	var many []string
	err := json.Unmarshal(raw, &many)
	return many, err
}

func SubmitSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyIdParam(w, r)
		if !ok {
			return
		}

		var body struct {
			Answers []answerPayload `json:"answers"`
		}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		responses := make([]survey.QuestionResponse, 0, len(body.Answers))
		for _, a := range body.Answers {
			values, err := parseAnswerValue(a.Value)
			if err != nil {
				httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body.answer_value")
				return
			}
			responses = append(responses, survey.QuestionResponse{
				QuestionID: a.QuestionID,
				Values:     values,
				Comment:    a.Comment,
			})
		}

		submission, err := app.Surveys.Submit(r.Context(), surveyId, responses)
		if err != nil {
			renderSurveyError(w, r, "db.insert_submission", surveyId, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": submission.ID,
		})
	}
}
