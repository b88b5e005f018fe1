package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldResource   = "resource"
	FieldQueryKey   = "query_key"
	FieldUserID     = "user_id"
	FieldSessionID  = "session_id"
	FieldHTTPStatus = "upstream_status"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentAPI      = "api_client"
	ComponentQuery    = "query"
	ComponentForms    = "forms"
	ComponentSession  = "session"
	ComponentEvents   = "events"
	ComponentSecurity = "security"
	ComponentTemplate = "template"
)

// Operations defines standard operation names
const (
	OpFetch      = "fetch"
	OpRefetch    = "refetch"
	OpInvalidate = "invalidate"
	OpMutate     = "mutate"
	OpValidate   = "validate"
	OpRender     = "render"
	OpLogin      = "login"
	OpLogout     = "logout"
	OpPublish    = "publish"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
