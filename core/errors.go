package core

// FieldError is used to indicate an error with a specific form or payload field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries per-field messages returned by the backend on a 4xx.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}
