package config

import (
	"fmt"
	"strings"
)

type EnvVars struct {
	Port       string `env:"PORT, default=8080"`
	AppName    string `env:"APP_NAME, default=Credibuy Console"`
	DataFolder string `env:"FOLDER, default=./data"`
	LogLevel   string `env:"LOG_LEVEL, default=info"`
	Env        string `env:"ENV, default=DEV"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port != "" && !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetDataFolder() string {
	return e.DataFolder
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

func (e EnvVars) GetEnv() string {
	return strings.ToUpper(e.Env)
}
