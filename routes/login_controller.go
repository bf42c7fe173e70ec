package routes

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/evalhub/evalhub/app"
	"github.com/evalhub/evalhub/httpx"
	"github.com/evalhub/evalhub/log"
	"github.com/evalhub/evalhub/model"
)

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		body := url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		}
		r.Body = io.NopCloser(strings.NewReader(body.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		r.Header.Set("content-length", strconv.Itoa(len(body.Encode())))
		app.UserCredentials(w, r)
	}
}

var reRefreshToken = regexp.MustCompile(`(?i)^refresh\s+(.*)`)

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("authorization")
		match := reRefreshToken.FindStringSubmatch(auth)
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}
		token := match[1]

		body := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {token},
		}

		req, err := http.NewRequest("POST", "/", strings.NewReader(body.Encode()))
		if err != nil {
			httpx.LogStatus(w, http.StatusInternalServerError, log.DebugLevel, "refresh.new_request")
			return
		}
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
		req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		resp.Flush(w)
	}
}

func Register(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		body.Email = strings.TrimSpace(body.Email)
		if body.Email == "" || !strings.Contains(body.Email, "@") {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "register.email", "a valid email address is required")
			return
		}
		if len(body.Password) < 8 {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "register.password", "password must be at least 8 characters")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.LogInternalError(w, "register.hash_password", err)
			return
		}

		created := time.Now().UTC()
		_, err = app.ExecContext(r.Context(),
			"INSERT INTO user (email, password_hash, created_at) VALUES (?, ?, ?)",
			body.Email,
			string(hash),
			created,
		)
		if err != nil {
			var sqliteErr sqlite3.Error
			if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
				httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "register.duplicate_email")
				return
			}
			httpx.LogInternalError(w, "db.insert_user", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, model.User{Email: body.Email, CreatedAt: created})
	}
}
