package service

// ValidationError carries a user-facing message for malformed input.
// Handlers render it as HTTP 400.
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}
