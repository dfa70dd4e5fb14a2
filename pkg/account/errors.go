package account

// Error is an account failure with a stable code for API clients and a
// message fit to show the user.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrMissingFields      = &Error{Code: "MISSING_FIELDS", Message: "All fields are required"}
	ErrMissingCredentials = &Error{Code: "MISSING_CREDENTIALS", Message: "Please enter both username and password"}
	ErrPasswordMismatch   = &Error{Code: "PASSWORD_MISMATCH", Message: "Passwords do not match"}
	ErrUserExists         = &Error{Code: "USER_EXISTS", Message: "Username already exists"}
	ErrInvalidCredentials = &Error{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password"}
	ErrUnknownSession     = &Error{Code: "UNKNOWN_SESSION", Message: "Session not found"}
)
