package chainfacade

import "github.com/ordata-labs/chainorg/chainlog"

var log = chainlog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger chainlog.Logger) {
	log = logger
}

// DisableLog disables all library log output.
func DisableLog() {
	log = chainlog.Disabled
}
