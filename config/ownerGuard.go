package config

import (
	"context"
	"strings"

	"github.com/barrosyan/sistema-pronto/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OwnerGuardPlugin scopes queries, updates and deletes to the request's owners
// when the model has a user_id column. Owners are the caller plus, for
// privileged callers, the owners they chose to view.
//
// NOTE:
// - This does NOT apply to Raw SQL queries. Those must include user_id manually.
// - Internal bypass is explicit via ContextKeySkipOwnerScope.
type OwnerGuardPlugin struct{}

func NewOwnerGuardPlugin() *OwnerGuardPlugin { return &OwnerGuardPlugin{} }

func (p *OwnerGuardPlugin) Name() string { return "owner_guard" }

func (p *OwnerGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("owner_guard:query", ownerGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("owner_guard:row", ownerGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("owner_guard:update", ownerGuardWriteCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("owner_guard:delete", ownerGuardWriteCallback); err != nil {
		return err
	}
	return nil
}

func ownerGuardCallback(db *gorm.DB) {
	scopeOwners(db, readOwnersFromContext)
}

// writes are never widened to the viewed owners
func ownerGuardWriteCallback(db *gorm.DB) {
	scopeOwners(db, func(ctx context.Context) []string {
		if id, ok := appctx.GetString(ctx, appctx.ContextKeyUserId); ok && id != "" {
			return []string{id}
		}
		return nil
	})
}

func scopeOwners(db *gorm.DB, owners func(context.Context) []string) {
	if db == nil || db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	if skip, _ := appctx.GetBool(ctx, appctx.ContextKeySkipOwnerScope); skip {
		return
	}
	ids := owners(ctx)
	if len(ids) == 0 {
		return
	}
	if db.Statement.Schema == nil || db.Statement.Schema.LookUpField("user_id") == nil {
		return
	}
	// Don't duplicate an explicit owner filter.
	if whereHasUserId(db.Statement.Clauses["WHERE"]) {
		return
	}

	col := clause.Column{Table: db.Statement.Table, Name: "user_id"}
	var expr clause.Expression = clause.Eq{Column: col, Value: ids[0]}
	if len(ids) > 1 {
		values := make([]interface{}, len(ids))
		for i, id := range ids {
			values[i] = id
		}
		expr = clause.IN{Column: col, Values: values}
	}
	db.Statement.AddClause(clause.Where{Exprs: []clause.Expression{expr}})
}

func readOwnersFromContext(ctx context.Context) []string {
	userId, _ := appctx.GetString(ctx, appctx.ContextKeyUserId)
	if userId == "" {
		return nil
	}
	ids := []string{userId}
	if isAdmin, _ := appctx.GetBool(ctx, appctx.ContextKeyIsAdmin); !isAdmin {
		return ids
	}
	selected, _ := appctx.GetStrings(ctx, appctx.ContextKeyViewOwnerIds)
	for _, id := range selected {
		if id != "" && id != userId {
			ids = append(ids, id)
		}
	}
	return ids
}

func whereHasUserId(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasUserId(e) {
			return true
		}
	}
	return false
}

func exprHasUserId(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsUserId(v.Column)
	case clause.Neq:
		return colIsUserId(v.Column)
	case clause.IN:
		return colIsUserId(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasUserId(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasUserId(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		// Best-effort for raw expressions.
		return strings.Contains(strings.ToLower(v.SQL), "user_id")
	case clause.NamedExpr:
		return strings.Contains(strings.ToLower(v.SQL), "user_id")
	default:
		return false
	}
}

func colIsUserId(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, "user_id")
	case clause.Column:
		return strings.EqualFold(c.Name, "user_id")
	default:
		return false
	}
}
