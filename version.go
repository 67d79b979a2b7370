package resyn

// Set at build time via -ldflags "-X ...".
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)
