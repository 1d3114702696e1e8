// # cmd/stacklens/main.go
package main

import (
	"os"

	"stacklens/internal/cliapp"
)

func main() {
	os.Exit(cliapp.Run(os.Args[1:]))
}
