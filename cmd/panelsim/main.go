// Command panelsim plays virtualization scenarios from YAML files.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/virtualize/cmd/panelsim/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
