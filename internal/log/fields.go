package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldAccountID = "account_id"
	FieldCategory  = "category"
	FieldKind      = "kind"
	FieldAmount    = "amount"
	FieldBalance   = "balance"
	FieldAlertKind = "alert_kind"
	FieldPath      = "path"
	FieldFormat    = "format"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldOperation = "operation"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentLedger  = "ledger"
	ComponentAlerts  = "alerts"
	ComponentRewrite = "rewrite"
	ComponentService = "service"
	ComponentSession = "session"
	ComponentStorage = "storage"
	ComponentCache   = "cache"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
	ComponentSheets  = "sheets"
	ComponentCLI     = "cli"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpIncome   = "income"
	OpExpense  = "expense"
	OpBudget   = "budget"
	OpRename   = "rename"
	OpMerge    = "merge"
	OpImport   = "import"
	OpExport   = "export"
	OpSave     = "save"
	OpLoad     = "load"
	OpBackup   = "backup"
	OpRestore  = "restore"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithAccount adds the account id field
func (f LogFields) WithAccount(id string) LogFields {
	f[FieldAccountID] = id
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the fields describing a ledger mutation
func (f LogFields) WithRecord(kind string, amount float64, category string) LogFields {
	f[FieldKind] = kind
	f[FieldAmount] = amount
	f[FieldCategory] = category
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
