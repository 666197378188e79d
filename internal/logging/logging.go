package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New cria o logger JSON da aplicação no nível informado (info por padrão).
func New(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

// Discard é usado em testes e em componentes sem logger injetado.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func LogError(logger *logrus.Logger, module, funcName, context string, data any, err error) {
	if logger == nil || err == nil {
		return
	}

	fields := logrus.Fields{
		"module":   module,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}

	logger.WithFields(fields).Error(err.Error())
}
