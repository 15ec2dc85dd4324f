package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type AlreadyExistsError struct {
	ErrorMessage
}

// ValidationIssue is one structural problem found in user input. The
// validator reports every issue it finds, never just the first.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError carries the complete list of issues so the caller can
// show them all at once.
type ValidationError struct {
	ErrorMessage
	Issues []ValidationIssue
}

// CompilationError means a validated config could not be compiled. It
// indicates a catalog or compiler defect, not bad user input, and is
// surfaced as an internal error.
type CompilationError struct {
	ErrorMessage
}

// ExecutionError is a data-store failure while running a compiled plan:
// the query could not run, as opposed to returning no rows.
type ExecutionError struct {
	ErrorMessage
	Cause error
}

type DatabaseError struct {
	ErrorMessage
	Operation string
	Cause     error
}

type ExternalServiceError struct {
	ErrorMessage
	Service   string
	Transient bool
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewAlreadyExistsError(message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

// NewValidationIssues wraps a non-empty issue list. The error message is
// the first issue so single-issue failures read naturally in logs.
func NewValidationIssues(issues []ValidationIssue) *ValidationError {
	msg := "invalid configuration"
	if len(issues) > 0 {
		msg = issues[0].Message
	}
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: msg},
		Issues:       issues,
	}
}

func NewCompilationError(message string) *CompilationError {
	return &CompilationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewExecutionError(message string, cause error) *ExecutionError {
	return &ExecutionError{
		ErrorMessage: ErrorMessage{Message: message},
		Cause:        cause,
	}
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

func NewDatabaseError(operation, message string, cause error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Cause:        cause,
	}
}

func (e *DatabaseError) Unwrap() error { return e.Cause }

func NewExternalServiceError(service, message string, transient bool) *ExternalServiceError {
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: message},
		Service:      service,
		Transient:    transient,
	}
}
