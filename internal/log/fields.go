package log

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldBuilding    = "building"
	FieldTenantID    = "tenant_id"
	FieldTenantName  = "tenant_name"
	FieldAptNumber   = "apt_number"
	FieldMonth       = "month"
	FieldAmountCents = "amount_cents"
	FieldBalance     = "balance_cents"
	FieldRent        = "rent_cents"
	FieldPercent     = "percent"
	FieldRow         = "row"
	FieldCount       = "count"
	FieldPath        = "path"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentStorage = "storage"
	ComponentTenants = "tenants"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentCLI     = "cli"
)

// Operations defines standard operation names.
const (
	OpCreate  = "create"
	OpRead    = "read"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpList    = "list"
	OpPayment = "payment"
	OpRaise   = "raise_rent"
	OpImport  = "import"
	OpExport  = "export"
	OpStartup = "startup"
)
