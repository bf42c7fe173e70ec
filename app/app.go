package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/evalhub/evalhub/config"
	"github.com/evalhub/evalhub/survey"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
	Surveys *survey.Store
}
