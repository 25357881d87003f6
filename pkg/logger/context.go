package logger

import "context"

type contextKey string

const (
	TraceIDKey      = contextKey("trace_id")
	RequestIDKey    = contextKey("request_id")
	UserIDKey       = contextKey("user_id")
	SessionIDKey    = contextKey("session_id")
	CustomFieldsKey = contextKey("custom_fields")
)

// contextKeys 决定字段在日志中的输出顺序
var contextKeys = []contextKey{TraceIDKey, RequestIDKey, UserIDKey, SessionIDKey}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithUserID 登录后由 dashboard 写入，方便按用户排查
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// WithCustomFields 向context中添加自定义字段，已有字段会被合并
func WithCustomFields(ctx context.Context, fields map[string]interface{}) context.Context {
	merged := make(map[string]interface{}, len(fields))
	if existing, ok := ctx.Value(CustomFieldsKey).(map[string]interface{}); ok {
		for k, v := range existing {
			merged[k] = v
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	return context.WithValue(ctx, CustomFieldsKey, merged)
}

// FromContext 从context中提取预设字段，返回 key/value 交替的切片
func FromContext(ctx context.Context) []interface{} {
	if ctx == nil {
		return nil
	}

	var fields []interface{}
	for _, key := range contextKeys {
		if v := ctx.Value(key); v != nil {
			fields = append(fields, string(key), v)
		}
	}

	if customFields, ok := ctx.Value(CustomFieldsKey).(map[string]interface{}); ok {
		for k, v := range customFields {
			fields = append(fields, k, v)
		}
	}
	return fields
}
