package yamlkit

import "fmt"

// Level is a diagnostic severity.
type Level int

const (
	Debug Level = iota
	Info
	Notice
	Warning
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Notice:
		return "NOTICE"
	case Warning:
		return "WARNING"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogFunc is the level-tagged diagnostic sink. A nil LogFunc means silent.
type LogFunc func(ctx any, level Level, msg string)

// MemFunc is the realloc-style allocator callback. old is nil on first
// allocation; newSize == 0 means free, in which case the return value is
// ignored. Implementations must zero any newly grown bytes -- the default
// allocator does, via make().
type MemFunc func(ctx any, old []byte, newSize int) ([]byte, error)

// DefaultMemFunc is a plain make()/copy() allocator with no tracking. Wrap
// it in a custom MemFunc to assert net-allocator-balance-zero properties in
// tests.
func DefaultMemFunc(_ any, old []byte, newSize int) ([]byte, error) {
	if newSize == 0 {
		return nil, nil
	}
	buf := make([]byte, newSize)
	copy(buf, old)
	return buf, nil
}

// Option is the configuration bit-set.
type Option uint32

const (
	IgnoreUnknownKeys Option = 1 << iota
	IgnoredKeyWarning
	OptCaseSensitive
	OptCaseInsensitive
	NoAlias
	NoAnchors
	StyleFlow
	StyleBlock
	DocumentDelim
)

func (o Option) Has(bit Option) bool { return o&bit != 0 }

// Config is the engine configuration object. It is never mutated by the
// engine and may be shared by concurrent, independently-scheduled engine
// instances as long as MemFunc is not itself reentrant from multiple
// goroutines.
type Config struct {
	LogFn    LogFunc
	LogCtx   any
	LogLevel Level

	MemFn  MemFunc
	MemCtx any

	Flags Option
}

func (c *Config) log(level Level, format string, args ...any) {
	if c == nil || c.LogFn == nil || level < c.LogLevel {
		return
	}
	c.LogFn(c.LogCtx, level, fmt.Sprintf(format, args...))
}

// caseInsensitive returns the ambient (config-level) case policy: only
// OPT_CASE_INSENSITIVE turns it on; the absence of either flag defaults to
// case-sensitive matching, same as OPT_CASE_SENSITIVE.
func (c *Config) caseInsensitive() bool {
	return c.Flags.Has(OptCaseInsensitive)
}

func (c *Config) alloc(n int) ([]byte, error) {
	return c.MemFn(c.MemCtx, nil, n)
}

func (c *Config) free(b []byte) {
	if b == nil {
		return
	}
	_, _ = c.MemFn(c.MemCtx, b, 0)
}
