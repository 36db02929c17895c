package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldBalance     = "balance"
	FieldAmount      = "amount"
	FieldComment     = "comment"
	FieldWeeks       = "weeks"
	FieldBackend     = "backend"
	FieldQueue       = "queue"
	FieldExchange    = "exchange"
	FieldLastAccrual = "last_accrual"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentBot     = "bot"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentSignal  = "signal"
	ComponentAccrual = "accrual"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
)

// Operations defines standard operation names
const (
	OpStartup  = "startup"
	OpShutdown = "shutdown"
	OpPoll     = "poll"
	OpSend     = "send"
	OpAccrue   = "accrue"
	OpSave     = "save"
	OpLoad     = "load"
	OpSync     = "sync"
)
