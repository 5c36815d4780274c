package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultUserInfoURL is Google's userinfo endpoint
const DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var (
	googleOAuthConfig *oauth2.Config
	userInfoURL       = DefaultUserInfoURL
)

// InitOAuth initializes the Google OAuth configuration. The provider
// endpoints default to Google's but can be overridden through
// GOOGLE_AUTH_URL, GOOGLE_TOKEN_URL and GOOGLE_USERINFO_URL, which is how the
// tests substitute a stub provider.
func InitOAuth() error {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, and GOOGLE_REDIRECT_URL must be set")
	}

	endpoint := google.Endpoint
	if u := os.Getenv("GOOGLE_AUTH_URL"); u != "" {
		endpoint.AuthURL = u
	}
	if u := os.Getenv("GOOGLE_TOKEN_URL"); u != "" {
		endpoint.TokenURL = u
	}
	userInfoURL = DefaultUserInfoURL
	if u := os.Getenv("GOOGLE_USERINFO_URL"); u != "" {
		userInfoURL = u
	}

	googleOAuthConfig = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     endpoint,
	}

	return nil
}

// LoginURL returns the Google authorization URL, forcing the account chooser
func LoginURL() string {
	return googleOAuthConfig.AuthCodeURL("",
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// ExchangeCode exchanges an authorization code for an OAuth token
func ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := googleOAuthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	return token, nil
}

// FetchUserInfo retrieves the user's profile from the userinfo endpoint using
// the bearer access token
func FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	client := googleOAuthConfig.Client(ctx, token)
	resp, err := client.Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned status %d", resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("userinfo response missing sub")
	}

	return &info, nil
}
