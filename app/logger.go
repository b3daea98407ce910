package app

import (
	"io"

	"github.com/sirupsen/logrus"
)

func newLogger(level string, output io.Writer) (*logrus.Entry, error) {
	logger := logrus.New()
	logger.SetOutput(output)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	if level == "" {
		level = logrus.InfoLevel.String()
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(parsed)
	return logrus.NewEntry(logger).WithField("component", "storefront"), nil
}
