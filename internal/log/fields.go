package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldStatementType = "statement_type"
	FieldStartDate     = "start_date"
	FieldEndDate       = "end_date"
	FieldAsOfDate      = "as_of_date"
	FieldAccountType   = "account_type"
	FieldActivityType  = "activity_type"
	FieldMessageID     = "message_id"
	FieldSheetsRef     = "sheets_ref"
	FieldCount         = "count"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentEngine    = "engine"
	ComponentStatement = "statement"
	ComponentRatio     = "ratio"
	ComponentVariance  = "variance"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpGenerate = "generate"
	OpCompute  = "compute"
	OpAnalyze  = "analyze"
	OpUpsert   = "upsert"
	OpRead     = "read"
	OpPublish  = "publish"
	OpExport   = "export"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
