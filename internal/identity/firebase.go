package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	ErrIdentityRequest    = errors.New("identity provider request failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidResponse    = errors.New("invalid response from identity provider")
)

const (
	identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	fcmURL             = "https://fcm.googleapis.com/v1"
	oauthScope         = "https://www.googleapis.com/auth/cloud-platform"
)

// Client talks to Firebase Auth over its REST surface. Administrative
// calls authenticate with a service-account OAuth token; the password
// grant uses the project's web API key.
type Client struct {
	projectID   string
	apiKey      string
	tokenSource oauth2.TokenSource
	httpClient  *http.Client
	verifier    *Verifier
}

// SignInResult is the tagged outcome of a password verification.
type SignInResult struct {
	UID     string
	IDToken string
	Email   string
}

// UserUpdate holds identity-provider user properties to change. Nil
// pointers leave the property untouched.
type UserUpdate struct {
	Email       *string
	Password    *string
	DisplayName *string
	Disabled    *bool
}

// NewClient builds an identity client. credentialsFile may be empty, in
// which case application default credentials are used.
func NewClient(ctx context.Context, projectID, apiKey, credentialsFile string) (*Client, error) {
	if projectID == "" {
		return nil, errors.New("missing identity provider project id")
	}

	var ts oauth2.TokenSource
	var err error
	if credentialsFile != "" {
		b, readErr := os.ReadFile(credentialsFile)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", readErr)
		}
		creds, credErr := google.CredentialsFromJSON(ctx, b, oauthScope)
		if credErr != nil {
			return nil, fmt.Errorf("failed to parse credentials: %w", credErr)
		}
		ts = creds.TokenSource
	} else {
		ts, err = google.DefaultTokenSource(ctx, oauthScope)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain default credentials: %w", err)
		}
	}

	verifier, err := NewVerifier(projectID)
	if err != nil {
		return nil, err
	}

	return &Client{
		projectID:   projectID,
		apiKey:      apiKey,
		tokenSource: oauth2.ReuseTokenSource(nil, ts),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		verifier:    verifier,
	}, nil
}

// Close stops background key refresh.
func (c *Client) Close() {
	if c.verifier != nil {
		c.verifier.Close()
	}
}

// VerifyIDToken verifies a bearer token locally against the provider's
// published signing keys.
func (c *Client) VerifyIDToken(tokenString string) (*TokenClaims, error) {
	return c.verifier.Verify(tokenString)
}

// CreateUser creates a new identity-provider user and returns its uid.
func (c *Client) CreateUser(ctx context.Context, email, password, name string) (string, error) {
	payload := map[string]interface{}{
		"email":       email,
		"password":    password,
		"displayName": name,
	}

	var result struct {
		LocalID string `json:"localId"`
	}
	if err := c.adminPost(ctx, "accounts", payload, &result); err != nil {
		return "", err
	}
	if result.LocalID == "" {
		return "", ErrInvalidResponse
	}

	log.Printf("Created identity provider user: %s (uid: %s)", email, result.LocalID)
	return result.LocalID, nil
}

// VerifyPassword checks email/password through the provider's password
// grant endpoint; passwords are never verified locally.
func (c *Client) VerifyPassword(ctx context.Context, email, password string) (*SignInResult, error) {
	if c.apiKey == "" {
		return nil, errors.New("missing identity provider web api key")
	}

	payload := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sign-in request: %w", err)
	}

	url := fmt.Sprintf("%s/accounts:signInWithPassword?key=%s", identityToolkitURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		msg := providerErrorMessage(respBody)
		switch {
		case strings.HasPrefix(msg, "INVALID_PASSWORD"),
			strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"),
			strings.HasPrefix(msg, "EMAIL_NOT_FOUND"):
			return nil, ErrInvalidCredentials
		case strings.HasPrefix(msg, "USER_DISABLED"):
			return nil, ErrUserNotFound
		}
		log.Printf("Failed to verify password: %d - %s", resp.StatusCode, msg)
		return nil, fmt.Errorf("%w: status %d", ErrIdentityRequest, resp.StatusCode)
	}

	var result struct {
		LocalID string `json:"localId"`
		IDToken string `json:"idToken"`
		Email   string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode sign-in response: %w", err)
	}

	return &SignInResult{UID: result.LocalID, IDToken: result.IDToken, Email: result.Email}, nil
}

// RevokeTokens invalidates all refresh tokens issued before now. Already
// issued ID tokens stay valid until their natural expiry.
func (c *Client) RevokeTokens(ctx context.Context, uid string) error {
	payload := map[string]interface{}{
		"localId":    uid,
		"validSince": fmt.Sprintf("%d", time.Now().Unix()),
	}
	if err := c.adminPost(ctx, "accounts:update", payload, nil); err != nil {
		return err
	}
	log.Printf("Revoked refresh tokens for uid: %s", uid)
	return nil
}

// DeleteUser removes the identity-provider user record.
func (c *Client) DeleteUser(ctx context.Context, uid string) error {
	payload := map[string]interface{}{"localId": uid}
	if err := c.adminPost(ctx, "accounts:delete", payload, nil); err != nil {
		return err
	}
	log.Printf("Deleted identity provider user: %s", uid)
	return nil
}

// UpdateUser changes identity-provider user properties.
func (c *Client) UpdateUser(ctx context.Context, uid string, props UserUpdate) error {
	payload := map[string]interface{}{"localId": uid}
	if props.Email != nil {
		payload["email"] = *props.Email
	}
	if props.Password != nil {
		payload["password"] = *props.Password
	}
	if props.DisplayName != nil {
		payload["displayName"] = *props.DisplayName
	}
	if props.Disabled != nil {
		payload["disableUser"] = *props.Disabled
	}

	if err := c.adminPost(ctx, "accounts:update", payload, nil); err != nil {
		return err
	}
	log.Printf("Updated identity provider user: %s", uid)
	return nil
}

// UserHasPassword reports whether a password credential provider is
// attached to the account.
func (c *Client) UserHasPassword(ctx context.Context, uid string) (bool, error) {
	payload := map[string]interface{}{"localId": []string{uid}}

	var result struct {
		Users []struct {
			LocalID          string `json:"localId"`
			ProviderUserInfo []struct {
				ProviderID string `json:"providerId"`
			} `json:"providerUserInfo"`
		} `json:"users"`
	}
	if err := c.adminPost(ctx, "accounts:lookup", payload, &result); err != nil {
		return false, err
	}
	if len(result.Users) == 0 {
		return false, ErrUserNotFound
	}
	for _, p := range result.Users[0].ProviderUserInfo {
		if p.ProviderID == "password" {
			return true, nil
		}
	}
	return false, nil
}

// adminPost issues an authenticated POST against the project-scoped
// identity toolkit endpoint and decodes the response into out (when not
// nil).
func (c *Client) adminPost(ctx context.Context, action string, payload interface{}, out interface{}) error {
	token, err := c.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("failed to obtain access token: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/projects/%s/%s", identityToolkitURL, c.projectID, action)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		msg := providerErrorMessage(respBody)
		switch {
		case strings.HasPrefix(msg, "USER_NOT_FOUND"):
			return ErrUserNotFound
		case strings.HasPrefix(msg, "EMAIL_EXISTS"), strings.HasPrefix(msg, "DUPLICATE_EMAIL"):
			return ErrEmailExists
		}
		log.Printf("Identity provider %s failed: %d - %s", action, resp.StatusCode, msg)
		return fmt.Errorf("%w: status %d", ErrIdentityRequest, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func providerErrorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Error.Message == "" {
		return string(body)
	}
	return parsed.Error.Message
}
