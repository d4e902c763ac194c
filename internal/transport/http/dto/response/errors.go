package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}

	// One uniform body for every reissue failure; the caller must not learn
	// which check rejected the token.
	ErrInvalidRefreshToken = ErrorResponse{
		Status:  "error",
		Error:   "invalid_refresh_token",
		Details: "Please re-authenticate",
	}

	ErrInternal = ErrorResponse{
		Status: "error",
		Error:  "internal_error",
	}
)
