package shared

// SchemaCapabilities answers whether optional tables and columns exist in the
// current deployment. It is resolved once per process and cached; callers use
// it to decide whether dependent features apply (the ledger poster skips when
// its tables are missing, branch filters apply only when the branch column is
// present). The resolver itself lives in infrastructure.
type SchemaCapabilities interface {
	TableExists(name string) bool
	ColumnExists(table, column string) bool
}
