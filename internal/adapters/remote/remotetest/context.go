package remotetest

import "context"

type ctxKey string

const bodyKey ctxKey = "body"

func withBody(ctx context.Context, body map[string]any) context.Context {
	return context.WithValue(ctx, bodyKey, body)
}

func bodyFrom(ctx context.Context) map[string]any {
	v, _ := ctx.Value(bodyKey).(map[string]any)
	return v
}
