package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/evalhub/evalhub/app"
	"github.com/evalhub/evalhub/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	// respondent side: no ownership gate, any holder of the id may answer
	api.Get(`/surveys/{id:^\d+$}`, TakeSurvey(app))
	api.Post(`/surveys/{id:^\d+$}/submissions`, SubmitSurvey(app))

	api.Route("/instructor", func(r chi.Router) {
		r.Use(middlewares.Instructor(app.Config))

		r.Post("/surveys", CreateSurvey(app))
		r.Get("/surveys", ListSurveys(app))
		r.Get(`/surveys/{id:^\d+$}`, GetSurveyById(app))
		r.Put(`/surveys/{id:^\d+$}/name`, RenameSurvey(app))
		r.Delete(`/surveys/{id:^\d+$}`, DeleteSurvey(app))

		r.Post(`/surveys/{id:^\d+$}/questions`, AddQuestion(app))
		r.Get(`/surveys/{id:^\d+$}/responses`, SurveyResponses(app))
		r.Get(`/surveys/{id:^\d+$}/export`, ExportResponses(app))
		r.Get(`/surveys/{id:^\d+$}/qr`, SurveyQRCode(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))
	api.Post("/register", Register(app))

	return api
}
