package utils

import (
	"context"

	"github.com/barrosyan/sistema-pronto/appctx"
)

var (
	ContextKeyToken         = appctx.ContextKeyToken
	ContextKeyUsername      = appctx.ContextKeyUsername
	ContextKeyUserId        = appctx.ContextKeyUserId
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId

	ContextKeyIsAdmin      = appctx.ContextKeyIsAdmin
	ContextKeyViewOwnerIds = appctx.ContextKeyViewOwnerIds
)

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUsername)
}

func GetUserIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserId)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, ContextKeyToken, token)
}

func SetUsernameInContext(ctx context.Context, username string) context.Context {
	return appctx.Set(ctx, ContextKeyUsername, username)
}

func SetUserIdInContext(ctx context.Context, userId string) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func GetIsAdminFromContext(ctx context.Context) (bool, bool) {
	return appctx.GetBool(ctx, ContextKeyIsAdmin)
}

func SetIsAdminInContext(ctx context.Context, isAdmin bool) context.Context {
	return appctx.Set(ctx, ContextKeyIsAdmin, isAdmin)
}

func GetViewOwnerIdsFromContext(ctx context.Context) ([]string, bool) {
	return appctx.GetStrings(ctx, ContextKeyViewOwnerIds)
}

func SetViewOwnerIdsInContext(ctx context.Context, ownerIds []string) context.Context {
	return appctx.Set(ctx, ContextKeyViewOwnerIds, ownerIds)
}

// ViewOwnerIds is the owner set a read may cover: the caller, plus the selected
// owners when the caller is privileged.
func ViewOwnerIds(ctx context.Context) []string {
	userId, _ := GetUserIdFromContext(ctx)
	ids := []string{}
	if userId != "" {
		ids = append(ids, userId)
	}
	if isAdmin, _ := GetIsAdminFromContext(ctx); !isAdmin {
		return ids
	}
	selected, _ := GetViewOwnerIdsFromContext(ctx)
	return UniqueSlice(append(ids, selected...))
}
