package core

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/folio-sh/folio/crypto"
	oauth2provider "github.com/folio-sh/folio/oauth2"
)

// oauth2TokenExchangeTimeout bounds the code-for-token exchange so an
// unresponsive provider cannot hang the request.
const oauth2TokenExchangeTimeout = 10 * time.Second

// OAuth2ProviderInfo contains the provider details needed for the
// client-side OAuth2 flow.
type OAuth2ProviderInfo struct {
	Name                string `json:"name"`
	DisplayName         string `json:"displayName"`
	State               string `json:"state"`
	AuthURL             string `json:"authURL"`
	RedirectURL         string `json:"redirectURL"`
	CodeVerifier        string `json:"codeVerifier,omitempty"`
	CodeChallenge       string `json:"codeChallenge,omitempty"`
	CodeChallengeMethod string `json:"codeChallengeMethod,omitempty"`
}

// OAuth2ProviderListData wraps the list of providers for the
// standardized response.
type OAuth2ProviderListData struct {
	Providers []OAuth2ProviderInfo `json:"providers"`
}

type oauth2Request struct {
	Provider     string `json:"provider"`
	Code         string `json:"code"`
	CodeVerifier string `json:"code_verifier"`
	RedirectURI  string `json:"redirect_uri"`
}

// AuthWithOAuth2Handler completes the authorization-code flow: it
// exchanges the code for a token, fetches the provider profile, links
// or creates the local user and issues a session.
// Endpoint: POST /api/auth-with-oauth2
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) AuthWithOAuth2Handler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		WriteJsonError(w, resp)
		return
	}

	var req oauth2Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	if req.Provider == "" || req.Code == "" || req.CodeVerifier == "" || req.RedirectURI == "" {
		WriteJsonError(w, errorMissingFields)
		return
	}

	cfg := a.Config()
	provider, ok := cfg.OAuth2Providers[req.Provider]
	if !ok {
		WriteJsonError(w, errorInvalidOAuth2Provider)
		return
	}

	oauth2Config := oauth2.Config{
		ClientID:     provider.ClientID,
		ClientSecret: provider.ClientSecret,
		RedirectURL:  req.RedirectURI,
		Scopes:       provider.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  provider.AuthURL,
			TokenURL: provider.TokenURL,
		},
	}

	ctx, cancel := context.WithTimeout(r.Context(), oauth2TokenExchangeTimeout)
	defer cancel()

	token, err := oauth2Config.Exchange(
		ctx,
		req.Code,
		oauth2.SetAuthURLParam("code_verifier", req.CodeVerifier),
	)
	if err != nil {
		WriteJsonError(w, errorOAuth2TokenExchangeFailed)
		return
	}

	client := oauth2Config.Client(ctx, token)
	resp, err := client.Get(provider.UserInfoURL)
	if err != nil {
		WriteJsonError(w, errorOAuth2UserInfoFailed)
		return
	}
	defer resp.Body.Close()

	oauthUser, err := oauth2provider.UserFromUserInfoURL(resp, provider.Name)
	if err != nil {
		a.Logger().Debug("failed to map provider user info", "error", err)
		WriteJsonError(w, errorOAuth2UserInfoProcessingFailed)
		return
	}

	if err := ValidateEmail(oauthUser.Email); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	// Create or link by email. The upsert only touches name, avatar and
	// provider so a concurrent registration with the same address never
	// produces inconsistent rows; whoever loses the insert race still
	// gets the surviving record back.
	user, err := a.DbAuth().CreateUserWithOauth2(*oauthUser)
	if err != nil {
		WriteJsonError(w, errorOAuth2DatabaseError)
		return
	}

	if err, resp := a.startSession(w, user, false); err != nil {
		a.Logger().Error("failed to start session", "error", err)
		WriteJsonError(w, resp)
		return
	}

	writeAuthResponse(w, http.StatusOK, CodeOkAuthentication, user)
}

// ListOAuth2ProvidersHandler returns the configured OAuth2 providers
// with fresh state and PKCE material for the client to begin the flow.
// Endpoint: GET /api/list-oauth2-providers
// Authenticated: No
func (a *App) ListOAuth2ProvidersHandler(w http.ResponseWriter, r *http.Request) {
	var providers []OAuth2ProviderInfo

	cfg := a.Config()
	for name, provider := range cfg.OAuth2Providers {
		if provider.ClientID == "" {
			continue
		}

		rURL := provider.RedirectURL
		if rURL == "" {
			rURL = cfg.Server.BaseURL + provider.RedirectURLPath
		}

		state := crypto.Oauth2State()
		oauth2Config := oauth2.Config{
			ClientID:     provider.ClientID,
			ClientSecret: provider.ClientSecret,
			RedirectURL:  rURL,
			Scopes:       provider.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  provider.AuthURL,
				TokenURL: provider.TokenURL,
			},
		}

		info := OAuth2ProviderInfo{
			Name:        name,
			DisplayName: provider.DisplayName,
			State:       state,
			RedirectURL: rURL,
		}

		if provider.PKCE {
			codeVerifier := crypto.Oauth2CodeVerifier()
			codeChallenge := crypto.S256Challenge(codeVerifier)
			info.AuthURL = oauth2Config.AuthCodeURL(state,
				oauth2.SetAuthURLParam("code_challenge", codeChallenge),
				oauth2.SetAuthURLParam("code_challenge_method", crypto.PKCECodeChallengeMethod),
			)
			info.CodeVerifier = codeVerifier
			info.CodeChallenge = codeChallenge
			info.CodeChallengeMethod = crypto.PKCECodeChallengeMethod
		} else {
			info.AuthURL = oauth2Config.AuthCodeURL(state)
		}

		providers = append(providers, info)
	}

	if len(providers) == 0 {
		WriteJsonError(w, errorInvalidOAuth2Provider)
		return
	}

	response := JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkOAuth2ProvidersList,
			Message: "OAuth2 providers list",
		},
		Data: OAuth2ProviderListData{Providers: providers},
	}
	WriteJsonWithData(w, response)
}
