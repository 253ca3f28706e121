package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the JSON logger used across the service.
func New(serviceName, level string) *logrus.Entry {
	return NewWithOutput(serviceName, level, os.Stdout)
}

// NewWithOutput is New with a configurable sink, mostly for tests.
func NewWithOutput(serviceName, level string, out io.Writer) *logrus.Entry {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log.WithField("service", serviceName)
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Entry {
	return NewWithOutput("test", "panic", io.Discard)
}
