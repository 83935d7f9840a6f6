package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldUserID     = "user_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldEntryID    = "entry_id"
	FieldCategory   = "category"
	FieldSubcat     = "subcat"
	FieldOwner      = "owner"
	FieldTaskNumber = "task_number"
	FieldOldNumber  = "old_number"
	FieldCount      = "count"
	FieldSession    = "session_state"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentTasks     = "tasks"
	ComponentSequencer = "sequencer"
	ComponentLedger    = "ledger"
	ComponentViews     = "views"
	ComponentSession   = "session"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentCache     = "cache"
	ComponentAuth      = "auth"
	ComponentTrace     = "trace"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpCreate         = "create"
	OpRead           = "read"
	OpCopy           = "copy"
	OpMove           = "move"
	OpToggle         = "toggle"
	OpEdit           = "edit"
	OpDelete         = "delete"
	OpClearCompleted = "clear_completed"
	OpRenumber       = "renumber"
	OpCompact        = "compact"
	OpList           = "list"
	OpAggregate      = "aggregate"
	OpPublish        = "publish"
	OpConsume        = "consume"
	OpShutdown       = "shutdown"
	OpStartup        = "startup"
	OpSession        = "session"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeAuth          = "auth_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error message, skipping nil errors
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithEntry adds the identifying fields of a tracked entry
func (f LogFields) WithEntry(id int64, category, subcat string, taskNumber int) LogFields {
	f[FieldEntryID] = id
	f[FieldCategory] = category
	f[FieldSubcat] = subcat
	f[FieldTaskNumber] = taskNumber
	return f
}

// WithPartition adds the category and subcat of a numbering scope
func (f LogFields) WithPartition(category, subcat string) LogFields {
	f[FieldCategory] = category
	f[FieldSubcat] = subcat
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
