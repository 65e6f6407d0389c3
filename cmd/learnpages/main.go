package main

import (
	"os"

	"github.com/yungbote/learnpages/cmd/learnpages/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
