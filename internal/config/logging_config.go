package config

type LoggingConfig interface {
	GetLogLevel() string
	GetLogFile() string
}

type Logging struct{}

var _ LoggingConfig = Logging{}

func (Logging) GetLogLevel() string {
	return GetEnv("LOG_LEVEL", "info")
}

// GetLogFile returns an optional path for a rotated log file in addition to stdout
func (Logging) GetLogFile() string {
	return GetEnv("LOG_FILE", "")
}
