package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mbortnikov/marketauth/internal/common"
)

// ErrUnavailable indicates the server could not be reached.
var ErrUnavailable = errors.New("server unavailable")

// APIClient is a thin HTTP client for the authentication API.
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SignupResult is the account view returned by the signup endpoint.
type SignupResult struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	AccountType string    `json:"account_type"`
	CreatedAt   time.Time `json:"created_at"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// SignUp creates an account. The password slice is not retained.
func (c *APIClient) SignUp(ctx context.Context, email, phone string, password []byte) (*SignupResult, error) {
	body := signupRequest{Email: email, Password: string(password), Phone: phone}

	var result SignupResult
	if err := c.postJSON(ctx, "/signup", body, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login exchanges credentials for an identity token.
func (c *APIClient) Login(ctx context.Context, email string, password []byte) (string, error) {
	body := loginRequest{Email: email, Password: string(password)}

	var result loginResponse
	if err := c.postJSON(ctx, "/login", body, http.StatusOK, &result); err != nil {
		return "", err
	}
	return result.Token, nil
}

// RequestVerification asks the server to dispatch a verification code to the
// account's contact channel and returns the code's expiry.
func (c *APIClient) RequestVerification(ctx context.Context, token string) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/verify", nil)
	if err != nil {
		return time.Time{}, err
	}
	req.Header.Set(common.AuthorizationHeaderName, common.BearerSchemePrefix+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return time.Time{}, decodeServerError(resp)
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return time.Time{}, err
	}
	return result.ExpiresAt, nil
}

func (c *APIClient) postJSON(ctx context.Context, path string, body any, wantStatus int, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return decodeServerError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeServerError(resp *http.Response) error {
	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error == "" {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return fmt.Errorf("server: %s", er.Error)
}
