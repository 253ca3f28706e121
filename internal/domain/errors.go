package domain

import "errors"

var (
	// ErrInvalidCredentials is returned when a username/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrUserNotFound indicates the user record could not be loaded.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSessionNotFound is returned when a session is unknown, revoked or expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUnauthenticated is returned when a request carries no usable session.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when a non-admin reaches an admin operation.
	ErrForbidden = errors.New("you do not have permission to access this page")
	// ErrInvalidQuiz wraps validation failures of an authoring payload.
	ErrInvalidQuiz = errors.New("invalid quiz payload")
	// ErrInvalidInput wraps validation failures of credentials.
	ErrInvalidInput = errors.New("invalid input")
)
