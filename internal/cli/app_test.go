package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubInputs(t *testing.T, lines []string, password []byte) func() {
	t.Helper()
	origST, origGP := getSimpleText, getPassword

	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		line := lines[i]
		i++
		return line, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) {
		return append([]byte(nil), password...), nil
	}
	return func() {
		getSimpleText = origST
		getPassword = origGP
	}
}

func newAppForServer(srv *httptest.Server) *App {
	return &App{
		client: NewAPIClient(srv.URL),
		reader: bufio.NewReader(strings.NewReader("")),
		out:    &bytes.Buffer{},
	}
}

func TestAppSignUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/signup", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "buyer@example.com", body["email"])
		assert.Equal(t, "+15551234", body["phone"])
		assert.Equal(t, "s3cret-pass", body["password"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id": "acc-1", "email": body["email"], "account_type": "BUYER",
		})
	}))
	defer srv.Close()

	restore := stubInputs(t, []string{"buyer@example.com", "+15551234"}, []byte("s3cret-pass"))
	defer restore()

	app := newAppForServer(srv)
	err := app.SignUp(context.Background())
	require.NoError(t, err)
	assert.Contains(t, app.out.(*bytes.Buffer).String(), "acc-1")
}

func TestAppLogin(t *testing.T) {
	t.Run("prints token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/login", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
		}))
		defer srv.Close()

		restore := stubInputs(t, []string{"buyer@example.com"}, []byte("s3cret-pass"))
		defer restore()

		app := newAppForServer(srv)
		require.NoError(t, app.Login(context.Background()))
		assert.Contains(t, app.out.(*bytes.Buffer).String(), "tok-123")
	})

	t.Run("surfaces server error message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
		}))
		defer srv.Close()

		restore := stubInputs(t, []string{"buyer@example.com"}, []byte("wrong"))
		defer restore()

		app := newAppForServer(srv)
		err := app.Login(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid credentials")
	})
}

func TestAppVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"expires_at": "2025-06-01T12:30:00Z"})
	}))
	defer srv.Close()

	app := newAppForServer(srv)
	err := app.Verify(context.Background(), []string{"tok-123"})
	require.NoError(t, err)
	assert.Contains(t, app.out.(*bytes.Buffer).String(), "Verification code sent")
}

func TestAppRunUnknownCommand(t *testing.T) {
	app := &App{reader: bufio.NewReader(strings.NewReader("")), out: &bytes.Buffer{}}
	err := app.Run(context.Background(), []string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestAPIClientUnavailable(t *testing.T) {
	c := NewAPIClient("http://127.0.0.1:1")
	_, err := c.Login(context.Background(), "buyer@example.com", []byte("pw"))
	assert.ErrorIs(t, err, ErrUnavailable)
}
