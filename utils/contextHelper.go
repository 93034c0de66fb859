package utils

import (
	"context"

	"github.com/mmdatafocus/ghg_reports/appctx"
)

var (
	ContextKeyUserId        = appctx.ContextKeyUserId
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeyReportCode    = appctx.ContextKeyReportCode
)

func GetUserIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserId)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func GetReportCodeFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyReportCode)
}

func SetUserIdInContext(ctx context.Context, userId string) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func SetReportCodeInContext(ctx context.Context, code string) context.Context {
	return appctx.Set(ctx, ContextKeyReportCode, code)
}
