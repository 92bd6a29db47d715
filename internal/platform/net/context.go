// Package net carries request scoped identifiers shared by every transport
package net

import (
	"context"

	"crosspost/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// WithRequest annotates ctx with the request id and the dispatch batch id
// the request id is visible to chi (GetReqID) and to logger.C, empty values are skipped
func WithRequest(ctx context.Context, reqID, batchID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	return logger.WithRequest(ctx, reqID, batchID)
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	if v := chimw.GetReqID(ctx); v != "" {
		return v
	}
	return logger.RequestID(ctx)
}

// BatchID returns the batch id on the context if present
func BatchID(ctx context.Context) string { return logger.BatchID(ctx) }
