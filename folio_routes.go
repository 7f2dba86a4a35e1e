package folio

import (
	"net/http"

	"github.com/folio-sh/folio/core"
	"github.com/folio-sh/folio/router"
)

func route(app *core.App) {
	chains := router.Chains{
		// auth
		"POST /api/register":               router.NewChain(http.HandlerFunc(app.RegisterWithPasswordHandler)),
		"POST /api/login":                  router.NewChain(http.HandlerFunc(app.LoginWithPasswordHandler)),
		"POST /api/logout":                 router.NewChain(http.HandlerFunc(app.LogoutHandler)),
		"GET /api/current-session":         router.NewChain(http.HandlerFunc(app.CurrentSessionHandler)),
		"POST /api/oauth-session":          router.NewChain(http.HandlerFunc(app.AuthWithSessionExchangeHandler)),
		"POST /api/auth-with-oauth2":       router.NewChain(http.HandlerFunc(app.AuthWithOAuth2Handler)),
		"GET /api/list-oauth2-providers":   router.NewChain(http.HandlerFunc(app.ListOAuth2ProvidersHandler)),
		"POST /api/password-reset-request": router.NewChain(http.HandlerFunc(app.RequestPasswordResetHandler)),
		"POST /api/password-reset-confirm": router.NewChain(http.HandlerFunc(app.ConfirmPasswordResetHandler)),

		// authenticated user
		"PUT /api/preferences": router.NewChain(http.HandlerFunc(app.UpdatePreferencesHandler)).
			WithMiddleware(app.RequireAuth),

		// public
		"POST /api/contact": router.NewChain(http.HandlerFunc(app.SubmitContactHandler)),
		"GET /api/status":   router.NewChain(http.HandlerFunc(app.StatusHandler)),

		// admin
		"GET /api/admin/users": router.NewChain(http.HandlerFunc(app.ListUsersHandler)).
			WithMiddleware(app.RequireAdmin),
		"PUT /api/admin/users/{id}/role": router.NewChain(http.HandlerFunc(app.ToggleUserRoleHandler)).
			WithMiddleware(app.RequireAdmin),
		"GET /api/admin/contacts": router.NewChain(http.HandlerFunc(app.ListContactsHandler)).
			WithMiddleware(app.RequireAdmin),
		"PUT /api/admin/contacts/{id}/read": router.NewChain(http.HandlerFunc(app.MarkContactReadHandler)).
			WithMiddleware(app.RequireAdmin),
		"DELETE /api/admin/contacts/{id}": router.NewChain(http.HandlerFunc(app.DeleteContactHandler)).
			WithMiddleware(app.RequireAdmin),
	}

	for pattern, chain := range chains {
		app.Router().Handle(pattern, chain.Handler())
	}
}
