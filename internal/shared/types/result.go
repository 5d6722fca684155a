package types

// Result carries the outcome of a mutating operation together with
// the message shown to the user who triggered it.
type Result[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// NewResult wraps data with a user-facing message
func NewResult[T any](data T, message string) Result[T] {
	return Result[T]{Data: data, Message: message}
}
