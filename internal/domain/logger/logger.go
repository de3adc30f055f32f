// Package logger holds the program logger.
package logger

import "zeku/internal/logging"

// Pl holds the global *ProgramLogger variable.
var Pl = logging.Discard()
