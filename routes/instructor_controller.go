package routes

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/skip2/go-qrcode"

	"github.com/evalhub/evalhub/app"
	"github.com/evalhub/evalhub/httpx"
	"github.com/evalhub/evalhub/log"
	"github.com/evalhub/evalhub/model"
	"github.com/evalhub/evalhub/routes/middlewares"
	"github.com/evalhub/evalhub/survey"
)

func surveyIdParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return 0, false
	}
	return id, true
}

// renderSurveyError translates the store's error kinds at the request
// boundary: 404/403 for lookup/ownership failures, 422 with the validation
// message for rejected questions, 400 for malformed answers.
func renderSurveyError(w http.ResponseWriter, r *http.Request, code string, id any, err error) {
	switch {
	case errors.Is(err, survey.ErrNotFound):
		httpx.LogNotFound(w, code, id)
	case errors.Is(err, survey.ErrForbidden):
		httpx.LogForbidden(w, code, id)
	case errors.Is(err, survey.ErrEmptyQuestion),
		errors.Is(err, survey.ErrDuplicateQuestion),
		errors.Is(err, survey.ErrInvalidQuestion):
		log.Debugf("%s: %s", code, err)
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, map[string]any{"error": err.Error()})
	case errors.Is(err, survey.ErrInvalidAnswer):
		log.Debugf("%s: %s", code, err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]any{"error": err.Error()})
	default:
		httpx.LogInternalError(w, code, err)
	}
}

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		principal := middlewares.Principal(r.Context())
		sv, err := app.Surveys.CreateSurvey(r.Context(), principal, body.Name)
		if err != nil {
			renderSurveyError(w, r, "db.insert_survey", body.Name, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, sv)
	}
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middlewares.Principal(r.Context())
		surveys, err := app.Surveys.ListSurveys(r.Context(), principal)
		if err != nil {
			renderSurveyError(w, r, "db.get_surveys", principal, err)
			return
		}

		render.JSON(w, r, map[string]any{
			"surveys": surveys,
		})
	}
}

func GetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyIdParam(w, r)
		if !ok {
			return
		}

		principal := middlewares.Principal(r.Context())
		sv, err := app.Surveys.GetSurvey(r.Context(), principal, surveyId)
		if err != nil {
			renderSurveyError(w, r, "db.get_survey", surveyId, err)
			return
		}

		render.JSON(w, r, sv)
	}
}

func RenameSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyIdParam(w, r)
		if !ok {
			return
		}

		var body struct {
			Name string `json:"name"`
		}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		principal := middlewares.Principal(r.Context())
		sv, err := app.Surveys.RenameSurvey(r.Context(), principal, surveyId, body.Name)
		if err != nil {
			renderSurveyError(w, r, "db.update_survey.name", surveyId, err)
			return
		}

		render.JSON(w, r, sv)
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyIdParam(w, r)
		if !ok {
			return
		}

		principal := middlewares.Principal(r.Context())
		err := app.Surveys.DeleteSurvey(r.Context(), principal, surveyId)
		if err != nil {
			renderSurveyError(w, r, "db.delete_survey", surveyId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func AddQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyIdParam(w, r)
		if !ok {
			return
		}

		var body struct {
			Text    string   `json:"text"`
			Type    string   `json:"type"`
			Options []string `json:"options"`
		}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		principal := middlewares.Principal(r.Context())
		question, err := app.Surveys.AddQuestion(
			r.Context(),
			principal,
			surveyId,
			body.Text,
			model.QuestionType(body.Type),
			body.Options,
		)
		if err != nil {
			renderSurveyError(w, r, "db.insert_question", surveyId, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, question)
	}
}

func SurveyResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyIdParam(w, r)
		if !ok {
			return
		}

		principal := middlewares.Principal(r.Context())
		responses, err := app.Surveys.Responses(r.Context(), principal, surveyId)
		if err != nil {
			renderSurveyError(w, r, "db.get_responses", surveyId, err)
			return
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
		})
	}
}

func ExportResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyIdParam(w, r)
		if !ok {
			return
		}

		principal := middlewares.Principal(r.Context())
		var buf bytes.Buffer
		err := app.Surveys.ExportCSV(r.Context(), principal, surveyId, &buf)
		if err != nil {
			renderSurveyError(w, r, "export.csv", surveyId, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="survey_%d_responses.csv"`, surveyId))
		w.Write(buf.Bytes())
	}
}

func SurveyQRCode(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyIdParam(w, r)
		if !ok {
			return
		}

		// same gate as the other instructor views
		principal := middlewares.Principal(r.Context())
		_, err := app.Surveys.GetSurvey(r.Context(), principal, surveyId)
		if err != nil {
			renderSurveyError(w, r, "qr.get_survey", surveyId, err)
			return
		}

		png, err := qrcode.Encode(app.Config.SurveyURL(surveyId), qrcode.Medium, 256)
		if err != nil {
			httpx.LogInternalError(w, "qr.encode", err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}
}
