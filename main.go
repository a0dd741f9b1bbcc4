package main

import (
	"os"

	"github.com/scan-io-git/magelint/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
