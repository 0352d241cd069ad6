package core

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	if singleton == nil {
		once.Do(func() {
			l := log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    false,
				ReportTimestamp: true,
				TimeFormat:      time.RFC3339,
				Prefix:          "PGPatcher",
			})
			l.SetLevel(log.InfoLevel)
			singleton = &logger{l}
		})
	}
	return singleton
}

// SetVerbosity maps the CLI's -v/-vv accumulator (§6) onto log levels.
// 0 = info, 1 = debug, 2+ = trace (charmbracelet/log has no trace level,
// so trace collapses onto debug with caller reporting turned on).
func SetVerbosity(count int) {
	l := getLogger()
	switch {
	case count <= 0:
		l.SetLevel(log.InfoLevel)
		l.SetReportCaller(false)
	case count == 1:
		l.SetLevel(log.DebugLevel)
		l.SetReportCaller(false)
	default:
		l.SetLevel(log.DebugLevel)
		l.SetReportCaller(true)
	}
}

// PrefixGuard implements the "prefix guard" design note from spec.md §9:
// a stack of scope segments that callers Push and Pop, whose joined
// segments prefix every line logged through the guard.
//
// Go has no goroutine-local storage, so the stack is threaded
// explicitly through a *PrefixGuard value that callers hold for the
// lifetime of one task (one mesh, one texture). This mirrors the
// teacher's singleton logger while keeping state out of globals.
type PrefixGuard struct {
	mu     sync.Mutex
	stack  []string
	logger *logger
}

// NewPrefixGuard opens a logging scope with an empty stack. Push the
// mesh/texture path with Push, and defer Pop until the task completes.
func NewPrefixGuard() *PrefixGuard {
	return &PrefixGuard{logger: getLogger()}
}

// Push appends a scope segment (e.g. a canonical mesh path) to the prefix.
func (g *PrefixGuard) Push(segment string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stack = append(g.stack, segment)
}

// Pop removes the most recently pushed scope segment.
func (g *PrefixGuard) Pop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.stack) > 0 {
		g.stack = g.stack[:len(g.stack)-1]
	}
}

func (g *PrefixGuard) prefix() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.stack) == 0 {
		return ""
	}
	return "[" + strings.Join(g.stack, "/") + "] "
}

func (g *PrefixGuard) Debugf(msg string, args ...interface{}) { g.logger.Debugf(g.prefix()+msg, args...) }
func (g *PrefixGuard) Infof(msg string, args ...interface{})  { g.logger.Infof(g.prefix()+msg, args...) }
func (g *PrefixGuard) Warnf(msg string, args ...interface{})  { g.logger.Warnf(g.prefix()+msg, args...) }
func (g *PrefixGuard) Errorf(msg string, args ...interface{}) { g.logger.Errorf(g.prefix()+msg, args...) }

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
