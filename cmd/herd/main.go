// Command herd supervises interactive agent CLI sessions.
package main

import (
	"fmt"
	"os"

	"github.com/tessro/herd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
