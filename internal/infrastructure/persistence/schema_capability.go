package persistence

import (
	"sync"

	"github.com/retailcore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// SchemaCapabilityResolver answers schema presence questions through the GORM
// migrator and caches the answers for the process lifetime. The schema only
// changes across deployments, never while a process runs.
type SchemaCapabilityResolver struct {
	db      *gorm.DB
	tables  sync.Map // table name -> bool
	columns sync.Map // "table.column" -> bool
}

// NewSchemaCapabilityResolver creates a resolver bound to the database
func NewSchemaCapabilityResolver(db *gorm.DB) *SchemaCapabilityResolver {
	return &SchemaCapabilityResolver{db: db}
}

// TableExists reports whether the table is present in the schema
func (r *SchemaCapabilityResolver) TableExists(name string) bool {
	if cached, ok := r.tables.Load(name); ok {
		return cached.(bool)
	}
	exists := r.db.Migrator().HasTable(name)
	r.tables.Store(name, exists)
	return exists
}

// ColumnExists reports whether the column is present on the table
func (r *SchemaCapabilityResolver) ColumnExists(table, column string) bool {
	key := table + "." + column
	if cached, ok := r.columns.Load(key); ok {
		return cached.(bool)
	}
	exists := r.db.Migrator().HasColumn(table, column)
	r.columns.Store(key, exists)
	return exists
}

var _ shared.SchemaCapabilities = (*SchemaCapabilityResolver)(nil)
