package models

// ValidationError is returned when a field holds a value the report cannot accept.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
