package main

import (
	"zomboid-mod-manager/cmd"
	"zomboid-mod-manager/logger"
)

func main() {
	defer logger.Sync() // Ensure logs are flushed on exit
	cmd.Execute()
}
