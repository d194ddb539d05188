package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/nilepay-solutions/ms-go-manual-payments/config"
)

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(logrus.StandardLogger().Out)

	return nil
}
