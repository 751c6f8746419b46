package leads

import "errors"

var (
	// ErrMissingConfig is returned when the pixel id or access token is not configured
	ErrMissingConfig = errors.New("leads: FB_PIXEL_ID or FB_ACCESS_TOKEN not configured")

	// ErrInvalidBody is returned when the submission body is not JSON
	ErrInvalidBody = errors.New("leads: invalid submission body")
)
