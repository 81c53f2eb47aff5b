package cpu

// Logger receives diagnostics from the Decoder and Alu.
// A *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// warn emits a diagnostic if a logger is attached.
func warn(log Logger, format string, v ...any) {
	if log == nil {
		return
	}
	log.Printf(format, v...)
}
