// SPDX-License-Identifier: MIT
package validate

import (
	"errors"
	"fmt"
	"strings"
)

// LogLevel is a level accepted by log.level and --log-level.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogLevels lists the accepted log levels.
var LogLevels = []string{
	string(LogLevelDebug),
	string(LogLevelInfo),
	string(LogLevelWarn),
	string(LogLevelError),
}

func (l LogLevel) String() string { return string(l) }

// ErrInvalidLogLevel is returned by ParseLogLevel.
var ErrInvalidLogLevel = errors.New("invalid log level")

// ParseLogLevel reads a level case-insensitively, ignoring surrounding
// whitespace.
func ParseLogLevel(s string) (LogLevel, error) {
	switch l := LogLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return l, nil
	}
	return "", fmt.Errorf("%w %q (want one of %s)", ErrInvalidLogLevel, s, strings.Join(LogLevels, ", "))
}

// LogLevel validates a log level field.
func (v *Validator) LogLevel(field, value string) {
	if _, err := ParseLogLevel(value); err != nil {
		v.AddError(field, err.Error(), value)
	}
}
