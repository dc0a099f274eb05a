package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrItemNotFound       = fmt.Errorf("library item not found")
	ErrStationNotFound    = fmt.Errorf("station not found")
	ErrStaleResponse      = fmt.Errorf("response no longer applies")

	// Audio errors
	ErrDecodeFailed  = fmt.Errorf("audio decode failed")
	ErrEditorClosed  = fmt.Errorf("editor session closed")
	ErrNotAudio      = fmt.Errorf("file is not an audio type")
	ErrMarkerUnset   = fmt.Errorf("marker not set")
	ErrInvalidMarker = fmt.Errorf("invalid marker value")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
