// Package applog is the device core's logging seam, grounded on
// blockwatch-cc-tzgo/rpc/log.go's package-level logger pattern: silent by
// default, wired to a real logger only when a host tool (the simulator, a
// test harness) calls UseLogger.
package applog

import "github.com/echa/log"

// logger is initialized disabled: a real device never has anywhere to send
// log output, and the simulator/tests opt in explicitly.
var logger log.Logger = log.Disabled

// DisableLog silences all package logging.
func DisableLog() {
	logger = log.Disabled
}

// UseLogger directs package logging to l, typically log.Log from a host
// process's own setup.
func UseLogger(l log.Logger) {
	logger = l
}

// Debugf logs at debug level through the currently configured logger.
func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Infof logs at info level through the currently configured logger.
func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Errorf logs at error level through the currently configured logger.
func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}
