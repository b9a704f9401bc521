package appctx

import "context"

// ContextKey is the shared type for all context keys in this codebase.
// Keeping it in a tiny package avoids import cycles (config <-> utils).
type ContextKey string

func (c ContextKey) String() string { return string(c) }

var (
	ContextKeyToken         = ContextKey("Token")
	ContextKeyUsername      = ContextKey("Username")
	ContextKeyCorrelationId = ContextKey("CorrelationId")

	// ContextKeyUserId is the owner id every campaign, lead and event row is scoped to.
	ContextKeyUserId = ContextKey("UserId")

	// ContextKeyIsAdmin is true for users holding the privileged (PM) role.
	ContextKeyIsAdmin = ContextKey("IsAdmin")

	// ContextKeyViewOwnerIds lists the owners a privileged user chose to view.
	ContextKeyViewOwnerIds = ContextKey("ViewOwnerIds")

	// ContextKeySkipOwnerScope disables automatic owner scoping for the request.
	// Use sparingly (internal ops only).
	ContextKeySkipOwnerScope = ContextKey("SkipOwnerScope")
)

func GetString(ctx context.Context, key ContextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func GetBool(ctx context.Context, key ContextKey) (bool, bool) {
	v, ok := ctx.Value(key).(bool)
	return v, ok
}

func GetStrings(ctx context.Context, key ContextKey) ([]string, bool) {
	v, ok := ctx.Value(key).([]string)
	return v, ok
}

func Set(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}
