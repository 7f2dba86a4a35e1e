package oauth2

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/db"
)

// UserFromUserInfoURL maps a provider's userinfo response to a db.User.
// The returned user has no ID; the database assigns one on insert.
func UserFromUserInfoURL(resp *http.Response, providerName string) (*db.User, error) {
	switch providerName {
	case config.OAuth2ProviderGoogle:
		return googleUser(resp)
	case config.OAuth2ProviderGitHub:
		return githubUser(resp)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

func googleUser(resp *http.Response) (*db.User, error) {
	extracted := struct {
		Id            string `json:"sub"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&extracted); err != nil {
		return nil, fmt.Errorf("failed to decode google user info: %w", err)
	}
	if !extracted.EmailVerified {
		return nil, fmt.Errorf("google email not verified")
	}

	return &db.User{
		Email:    extracted.Email,
		Name:     extracted.Name,
		Avatar:   extracted.Picture,
		Provider: config.OAuth2ProviderGoogle,
	}, nil
}

func githubUser(resp *http.Response) (*db.User, error) {
	extracted := struct {
		Id        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
		Email     string `json:"email"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&extracted); err != nil {
		return nil, fmt.Errorf("failed to decode github user info: %w", err)
	}
	if extracted.Email == "" {
		return nil, fmt.Errorf("github account has no public email")
	}

	name := extracted.Name
	if name == "" {
		name = extracted.Login
	}
	if name == "" {
		name = "user-" + strconv.FormatInt(extracted.Id, 10)
	}

	return &db.User{
		Email:    extracted.Email,
		Name:     name,
		Avatar:   extracted.AvatarURL,
		Provider: config.OAuth2ProviderGitHub,
	}, nil
}
