package log

// Field names used across structured log records.
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldRequestID   = "request_id"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatus      = "status"
	FieldClientIP    = "client_ip"
	FieldUserID      = "user_id"
	FieldEmail       = "email"
	FieldExpenseID   = "expense_id"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldState       = "state"
	FieldPercentUsed = "percent_used"
	FieldCount       = "count"
	FieldQueue       = "queue"
	FieldExchange    = "exchange"
	FieldBackend     = "backend"
	FieldPort        = "port"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAuth      = "auth"
	ComponentStore     = "store"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentExport    = "export"
	ComponentCache     = "cache"
	ComponentRateLimit = "ratelimit"
)

// Operation names.
const (
	OpCreateExpense  = "create_expense"
	OpUpdateExpense  = "update_expense"
	OpDeleteExpense  = "delete_expense"
	OpListExpenses   = "list_expenses"
	OpSaveBudget     = "save_budget"
	OpDashboard      = "dashboard"
	OpSignUp         = "sign_up"
	OpSignIn         = "sign_in"
	OpSignOut        = "sign_out"
	OpChangePassword = "change_password"
	OpPublishEvent   = "publish_event"
	OpConsumeEvent   = "consume_event"
	OpRecordAlert    = "record_alert"
	OpExportReport   = "export_report"
)
