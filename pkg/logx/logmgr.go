//nolint:gochecknoglobals
package logx

import (
	"context"
	"fmt"
	"log"
	"sync"
)

type ServiceContext struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

// Logger - logger interface.
type Logger interface {
	// LogInfo logs a message at Info level.
	LogInfo(ctx context.Context, msg string)
	// LogDebug logs a message at Debug level.
	LogDebug(ctx context.Context, msg string)
	// LogWarning logs a message at Warning level.
	LogWarning(ctx context.Context, msg string, errs ...error)
	// LogError logs a message at Error level.
	LogError(ctx context.Context, msg string, errs ...error)
	// LogPanic logs a message at Panic level then panics.
	LogPanic(ctx context.Context, msg string, errs ...error)
	// LogFatal logs a message at Fatal Level.
	// The logger then calls os.Exit(1), even if logging at FatalLevel is
	// disabled.
	LogFatal(ctx context.Context, msg string, errs ...error)

	GetLogger() interface{}
}

var (
	lock   sync.RWMutex
	logger Logger
)

type txIdKey struct{}

// GetLogger - returns an instance of the Logger.
// If called before SetupLogger a std log based logger will be returned.
func GetLogger() Logger {
	lock.RLock()
	defer lock.RUnlock()

	if logger == nil {
		return &DefaultLogger{}
	}

	return logger
}

// SetLogger - replaces the global Logger.
func SetLogger(l Logger) {
	lock.Lock()
	defer lock.Unlock()

	logger = l
}

// ContextWithTxId - returns a context carrying the id of the active transaction,
// added to every log line written with it.
func ContextWithTxId(ctx context.Context, txId int64) context.Context {
	return context.WithValue(ctx, txIdKey{}, txId)
}

// TxIdFromContext - returns the transaction id stored by ContextWithTxId.
func TxIdFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}

	txId, ok := ctx.Value(txIdKey{}).(int64)

	return txId, ok
}

// DefaultLogger - Logger implementation backed by the standard log package.
type DefaultLogger struct{}

func withErrs(msg string, errs []error) string {
	for _, err := range errs {
		if err != nil {
			msg = fmt.Sprintf("%s: %v", msg, err)
		}
	}

	return msg
}

// LogInfo logs at info level.
func (nl *DefaultLogger) LogInfo(ctx context.Context, msg string) {
	log.Println("INFO " + msg)
}

// LogDebug logs at debug level.
func (nl *DefaultLogger) LogDebug(ctx context.Context, msg string) {
	log.Println("DEBUG " + msg)
}

// LogWarning logs at warning level.
func (nl *DefaultLogger) LogWarning(ctx context.Context, msg string, errs ...error) {
	log.Println("WARN " + withErrs(msg, errs))
}

// LogError logs at error level.
func (nl *DefaultLogger) LogError(ctx context.Context, msg string, errs ...error) {
	log.Println("ERROR " + withErrs(msg, errs))
}

// LogPanic logs then panics.
func (nl *DefaultLogger) LogPanic(ctx context.Context, msg string, errs ...error) {
	log.Panicln("PANIC " + withErrs(msg, errs))
}

// LogFatal logs then exits.
func (nl *DefaultLogger) LogFatal(ctx context.Context, msg string, errs ...error) {
	log.Fatalln("FATAL " + withErrs(msg, errs))
}

// GetLogger noop.
func (nl *DefaultLogger) GetLogger() interface{} { return nil }
