package main

import (
	"github.com/graphloom/graphloom/backend/internal/server"
	"github.com/graphloom/graphloom/backend/internal/util"
	"github.com/graphloom/graphloom/backend/pkg/logger"
	"github.com/graphloom/graphloom/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
