package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
)

const (
	signInEndpoint  = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"
	refreshEndpoint = "https://securetoken.googleapis.com/v1/token"
)

type FirebaseAuthClient struct {
	client     *auth.Client
	apiKey     string
	httpClient *http.Client
}

func NewFirebaseAuthClient(client *auth.Client, apiKey string) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client:     client,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (f *FirebaseAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		return "", err
	}

	return user.UID, nil
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}

// UpdateProfile sets display name and photo URL. Empty values are left alone.
func (f *FirebaseAuthClient) UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error {
	if displayName == "" && photoURL == "" {
		return nil
	}

	params := &auth.UserToUpdate{}
	if displayName != "" {
		params = params.DisplayName(displayName)
	}
	if photoURL != "" {
		params = params.PhotoURL(photoURL)
	}

	_, err := f.client.UpdateUser(ctx, uid, params)
	return err
}

func (f *FirebaseAuthClient) DeleteUser(ctx context.Context, uid string) error {
	err := f.client.DeleteUser(ctx, uid)
	if auth.IsUserNotFound(err) {
		return nil
	}
	return err
}

// TestConnection performs a cheap authenticated call against the project.
func (f *FirebaseAuthClient) TestConnection(ctx context.Context) error {
	iter := f.client.Users(ctx, "")
	_, err := iter.Next()
	if err != nil && err != iterator.Done {
		return err
	}
	return nil
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
}

type identityError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithEmailPassword exchanges credentials for an ID token and a refresh
// token through the identity toolkit REST API.
func (f *FirebaseAuthClient) SignInWithEmailPassword(ctx context.Context, email, password string) (string, string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signInEndpoint+"?key="+url.QueryEscape(f.apiKey), bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out signInResponse
	if err := f.do(req, &out); err != nil {
		return "", "", err
	}
	return out.IDToken, out.RefreshToken, nil
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
}

func (f *FirebaseAuthClient) RefreshIDToken(ctx context.Context, refreshToken string) (string, string, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, refreshEndpoint+"?key="+url.QueryEscape(f.apiKey), bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out refreshResponse
	if err := f.do(req, &out); err != nil {
		return "", "", err
	}
	return out.IDToken, out.RefreshToken, nil
}

func (f *FirebaseAuthClient) do(req *http.Request, out interface{}) error {
	if f.apiKey == "" {
		return fmt.Errorf("firebase api key is not configured")
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var identityErr identityError
		if err := json.NewDecoder(resp.Body).Decode(&identityErr); err == nil && identityErr.Error.Message != "" {
			return fmt.Errorf("identity provider: %s", identityErr.Error.Message)
		}
		return fmt.Errorf("identity provider: status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
