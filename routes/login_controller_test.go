package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestRegisterHandler(t *testing.T) {
	testApp := newTestApp(t)

	register := func(email, password string) *httptest.ResponseRecorder {
		req := jsonRequest(t, "POST", "/api/register", map[string]any{"email": email, "password": password})
		rec := httptest.NewRecorder()
		Register(testApp)(rec, req)
		return rec
	}

	rec := register("alice@example.com", "hunter2hunter2")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var hash string
	err := testApp.QueryRow("SELECT password_hash FROM user WHERE email = ?", "alice@example.com").Scan(&hash)
	if err != nil {
		t.Fatalf("user row: %v", err)
	}
	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2hunter2"))
	if err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}

	if rec := register("alice@example.com", "hunter2hunter2"); rec.Code != http.StatusConflict {
		t.Errorf("duplicate email: status = %d", rec.Code)
	}
	if rec := register("not-an-email", "hunter2hunter2"); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad email: status = %d", rec.Code)
	}
	if rec := register("bob@example.com", "short"); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("short password: status = %d", rec.Code)
	}
}
