package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")

	// InvalidArgument is returned when an input argument is invalid.
	InvalidArgument = ErrorKind("Invalid Argument")

	// Unsupported is returned when a feature or value is not supported.
	Unsupported = ErrorKind("Unsupported")

	// Conflict is returned when the call conflicts with the current state of the resource.
	Conflict = ErrorKind("Conflict")

	// PermissionDenied is returned when the caller is not allowed to perform the call.
	PermissionDenied = ErrorKind("Permission Denied")

	// Unavailable is returned when a required collaborator cannot be reached.
	Unavailable = ErrorKind("Unavailable")

	OverflowUint64  = ErrorKind("overflow uint64")
	OverflowUint128 = ErrorKind("overflow uint128")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
