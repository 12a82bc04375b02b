package diag

import "github.com/sirupsen/logrus"

// TraceEntry records one fetch/execute step, logged at Debug level when
// --debug is set.
type TraceEntry struct {
	IP         int
	Mnemonic   string
	Arg        string
	StackDepth int
	StackTop   *int64
}

// Emit logs a TraceEntry at Debug level with structured fields, so a
// --debug run can be filtered/grepped by field (e.g. ip=, depth=) the way
// logrus's WithFields output is designed to be.
func Emit(log *logrus.Logger, e TraceEntry) {
	fields := logrus.Fields{
		"ip":    e.IP,
		"op":    e.Mnemonic,
		"depth": e.StackDepth,
	}
	if e.Arg != "" {
		fields["arg"] = e.Arg
	}
	if e.StackTop != nil {
		fields["top"] = *e.StackTop
	}
	log.WithFields(fields).Debug("step")
}
