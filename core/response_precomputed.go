package core

import (
	"encoding/json"
	"net/http"
)

// Standard response codes
const (
	// oks
	CodeOkPasswordResetRequested = "ok_password_reset_requested"
	CodeOkPasswordReset          = "ok_password_reset"
	CodeOkLogout                 = "ok_logout"
	CodeOkContactReceived        = "ok_contact_received"

	// errors
	CodeErrorTokenGeneration                = "err_token_generation"
	CodeErrorInvalidRequest                 = "err_invalid_input"
	CodeErrorInvalidCredentials             = "err_invalid_credentials"
	CodeErrorMissingFields                  = "err_missing_fields"
	CodeErrorPasswordComplexity             = "err_password_complexity"
	CodeErrorEmailConflict                  = "err_email_conflict"
	CodeErrorNotFound                       = "err_not_found"
	CodeErrorUnauthenticated                = "err_unauthenticated"
	CodeErrorSessionExpired                 = "err_session_expired"
	CodeErrorForbidden                      = "err_forbidden"
	CodeErrorSelfRoleChange                 = "err_self_role_change"
	CodeErrorInvalidRole                    = "err_invalid_role"
	CodeErrorInvalidResetToken              = "err_invalid_reset_token"
	CodeErrorServiceUnavailable             = "err_service_unavailable"
	CodeErrorIpBlocked                      = "err_ip_blocked"
	CodeErrorInvalidContentType             = "err_invalid_content_type"
	CodeErrorInvalidOAuth2Provider          = "err_invalid_oauth2_provider"
	CodeErrorOAuth2TokenExchangeFailed      = "err_oauth2_token_exchange_failed"
	CodeErrorOAuth2UserInfoFailed           = "err_oauth2_user_info_failed"
	CodeErrorOAuth2UserInfoProcessingFailed = "err_oauth2_user_info_processing_failed"
	CodeErrorOAuth2SessionExchangeFailed    = "err_oauth2_session_exchange_failed"
	CodeErrorOAuth2DatabaseError            = "err_oauth2_database_error"
	CodeErrorAuthDatabaseError              = "err_auth_database_error"
)

// precomputeBasicResponse runs during initialization (before main), so
// request handlers only ever write pre-marshalled bytes. It avoids
// repeated JSON marshaling during request handling.
func precomputeBasicResponse(status int, code, message string) jsonResponse {
	basic := JsonBasic{
		Status:  status,
		Code:    code,
		Message: message,
	}
	body, _ := json.Marshal(basic)
	return jsonResponse{status: status, body: body}
}

// Precomputed error and ok responses with status codes
var (
	// errors
	errorTokenGeneration                = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorTokenGeneration, "Failed to generate session token")
	errorInvalidRequest                 = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidRequest, "The request contains invalid data")
	errorInvalidCredentials             = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidCredentials, "Invalid credentials provided")
	errorMissingFields                  = precomputeBasicResponse(http.StatusBadRequest, CodeErrorMissingFields, "Required fields are missing")
	errorPasswordComplexity             = precomputeBasicResponse(http.StatusBadRequest, CodeErrorPasswordComplexity, "Password must be at least 8 characters")
	errorEmailConflict                  = precomputeBasicResponse(http.StatusConflict, CodeErrorEmailConflict, "Email address is already registered")
	errorNotFound                       = precomputeBasicResponse(http.StatusNotFound, CodeErrorNotFound, "Requested resource not found")
	errorUnauthenticated                = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorUnauthenticated, "Authentication required")
	errorSessionExpired                 = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorSessionExpired, "Session has expired")
	errorForbidden                      = precomputeBasicResponse(http.StatusForbidden, CodeErrorForbidden, "Not authorized to perform this action")
	errorSelfRoleChange                 = precomputeBasicResponse(http.StatusForbidden, CodeErrorSelfRoleChange, "Cannot change the role of your own account")
	errorInvalidRole                    = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidRole, "Invalid role specified")
	errorInvalidResetToken              = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidResetToken, "Reset token is invalid, expired or already used")
	errorServiceUnavailable             = precomputeBasicResponse(http.StatusServiceUnavailable, CodeErrorServiceUnavailable, "Service is temporarily unavailable")
	errorIpBlocked                      = precomputeBasicResponse(http.StatusTooManyRequests, CodeErrorIpBlocked, "IP address has been blocked due to excessive requests. Please try again later")
	errorInvalidContentType             = precomputeBasicResponse(http.StatusUnsupportedMediaType, CodeErrorInvalidContentType, "Unsupported media type")
	errorInvalidOAuth2Provider          = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidOAuth2Provider, "Invalid OAuth2 provider specified")
	errorOAuth2TokenExchangeFailed      = precomputeBasicResponse(http.StatusBadRequest, CodeErrorOAuth2TokenExchangeFailed, "Failed to exchange OAuth2 token")
	errorOAuth2UserInfoFailed           = precomputeBasicResponse(http.StatusBadRequest, CodeErrorOAuth2UserInfoFailed, "Failed to get user info from OAuth2 provider")
	errorOAuth2UserInfoProcessingFailed = precomputeBasicResponse(http.StatusBadRequest, CodeErrorOAuth2UserInfoProcessingFailed, "Failed to process user info from OAuth2 provider")
	errorOAuth2SessionExchangeFailed    = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorOAuth2SessionExchangeFailed, "Login session could not be verified with the provider")
	errorOAuth2DatabaseError            = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorOAuth2DatabaseError, "Database error during OAuth2 authentication")
	errorAuthDatabaseError              = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorAuthDatabaseError, "Database error during authentication")

	// oks
	okPasswordResetRequested = precomputeBasicResponse(http.StatusAccepted, CodeOkPasswordResetRequested, "Password reset instructions will be sent to your email if it exists in our system")
	okPasswordReset          = precomputeBasicResponse(http.StatusOK, CodeOkPasswordReset, "Password reset successfully")
	okLogout                 = precomputeBasicResponse(http.StatusOK, CodeOkLogout, "Logged out")
	okContactReceived        = precomputeBasicResponse(http.StatusAccepted, CodeOkContactReceived, "Message received. Thank you for reaching out")
)
