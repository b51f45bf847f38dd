package log

import "sort"

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldOperation   = "operation"
	FieldContactID   = "contact_id"
	FieldContactName = "contact_name"
	FieldTxnID       = "transaction_id"
	FieldTitle       = "title"
	FieldAmount      = "amount"
	FieldProjectID   = "project_id"
	FieldProjectName = "project_name"
	FieldResolution  = "resolution"
	FieldFilter      = "filter"
	FieldBackend     = "backend"
	FieldLocale      = "locale"
	FieldPage        = "page"
	FieldTool        = "tool"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentLedger     = "ledger"
	ComponentStorage    = "storage"
	ComponentCache      = "cache"
	ComponentBackend    = "backend"
	ComponentOnboarding = "onboarding"
	ComponentMCP        = "mcp"
	ComponentCLI        = "cli"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpAssign   = "assign"
	OpDelete   = "delete"
	OpList     = "list"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeConflict      = "conflict_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error fields
func (f LogFields) WithError(err error, errorType string) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = errorType
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithContact adds contact fields
func (f LogFields) WithContact(id, name string) LogFields {
	f[FieldContactID] = id
	if name != "" {
		f[FieldContactName] = name
	}
	return f
}

// WithTransaction adds transaction fields
func (f LogFields) WithTransaction(id, title string, amount float64) LogFields {
	f[FieldTxnID] = id
	f[FieldTitle] = title
	f[FieldAmount] = amount
	return f
}

// WithProject adds project fields
func (f LogFields) WithProject(id, name string) LogFields {
	f[FieldProjectID] = id
	if name != "" {
		f[FieldProjectName] = name
	}
	return f
}

// ToSlice converts LogFields to key/value pairs for slog, sorted by key.
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	slice := make([]any, 0, len(f)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}
