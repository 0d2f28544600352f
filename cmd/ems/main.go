// Command ems processes directories of event reservation scripts.
package main

import (
	"fmt"
	"os"

	"github.com/guilhermedcampos/event-management-system/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
