package tenantctx

import (
	"strings"

	"github.com/fleetops/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tenantColumn = "tenant_id"

// tenantCallback adds tenant_id predicates to statements on tenant-owned tables
type tenantCallback struct{}

// RegisterCallbacks registers tenant filtering callbacks with GORM.
// Query, update, delete, and row statements on any model carrying a
// tenant_id column get the active tenant's predicate; a missing tenant in
// a non-platform context makes the statement error instead of running wide.
func RegisterCallbacks(db *gorm.DB) {
	tc := tenantCallback{}
	_ = db.Callback().Query().Before("gorm:query").Register("tenantctx:before_query", tc.addTenantFilter)
	_ = db.Callback().Update().Before("gorm:update").Register("tenantctx:before_update", tc.addTenantFilter)
	_ = db.Callback().Delete().Before("gorm:delete").Register("tenantctx:before_delete", tc.addTenantFilter)
	_ = db.Callback().Row().Before("gorm:row").Register("tenantctx:before_row", tc.addTenantFilter)

	// Create is not filtered: tenant_id is set by the aggregate constructors.
}

func (tc tenantCallback) addTenantFilter(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}
	if db.Statement.Unscoped {
		return
	}
	if !tc.statementHasTenantColumn(db) {
		return
	}
	if IsPlatformScope(db.Statement.Context) {
		return
	}
	if tc.hasTenantCondition(db) {
		return
	}

	tenantID := logger.GetTenantID(db.Statement.Context)
	if tenantID == "" {
		_ = db.AddError(ErrTenantRequired)
		return
	}
	if _, err := uuid.Parse(tenantID); err != nil {
		_ = db.AddError(ErrInvalidTenantID)
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: clause.CurrentTable, Name: tenantColumn},
				Value:  tenantID,
			},
		},
	})
}

// statementHasTenantColumn reports whether the statement's model is a
// tenant-owned table. Platform tables (e.g. tenants) carry no tenant_id
// column and are governed by the store policy alone.
func (tc tenantCallback) statementHasTenantColumn(db *gorm.DB) bool {
	if db.Statement.Schema == nil {
		// Raw statements bypass the schema; the store policy still applies.
		return false
	}
	return db.Statement.Schema.LookUpField(tenantColumn) != nil
}

// hasTenantCondition checks if a tenant_id condition is already present in
// the WHERE clause. Only WHERE expressions are inspected; a statement that
// merely selects or sets the column still gets the predicate.
func (tc tenantCallback) hasTenantCondition(db *gorm.DB) bool {
	whereClause, ok := db.Statement.Clauses["WHERE"]
	if !ok {
		return false
	}
	where, ok := whereClause.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, expr := range where.Exprs {
		if tc.exprContainsTenant(expr) {
			return true
		}
	}
	return false
}

func (tc tenantCallback) exprContainsTenant(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == tenantColumn
		}
	case clause.Expr:
		// string conditions like Where("tenant_id = ?", id)
		return strings.Contains(e.SQL, tenantColumn)
	case clause.NamedExpr:
		return strings.Contains(e.SQL, tenantColumn)
	case clause.IN:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == tenantColumn
		}
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if tc.exprContainsTenant(cond) {
				return true
			}
		}
	case clause.OrConditions:
		for _, cond := range e.Exprs {
			if tc.exprContainsTenant(cond) {
				return true
			}
		}
	}
	return false
}
