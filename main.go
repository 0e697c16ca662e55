package main

import (
	"curator/cmd"
	"curator/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
