package logger

import "context"

// Logger is a leveled, printf-style logger. The context is carried so call
// sites stay uniform; the job or model being worked on belongs in the message.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
}
