package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldOwnerID     = "owner_id"
	FieldTxID        = "transaction_id"
	FieldAmountCents = "amount_cents"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldQueue       = "queue"
	FieldExchange    = "exchange"
	FieldSheetsRef   = "sheets_ref"
)

// Standard component names
const (
	ComponentApp    = "app"
	ComponentWorker = "worker"
)
