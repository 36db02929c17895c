package backend

// BackendType selects the ledger persistence medium
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// File backend specific
	StateFile string

	// SQLite backend specific
	SQLiteDBPath string

	// Optional AMQP sync pipeline
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}
