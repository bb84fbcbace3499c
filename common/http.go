package common

// HttpResponse is the {error, result} envelope shared by the API and its collaborators.
type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

func NewResult[T any](result T) HttpResponse[T] {
	return HttpResponse[T]{Result: &result}
}

func NewErrorResponse[T any](message string) HttpResponse[T] {
	return HttpResponse[T]{Error: &message}
}
