// Command eclat mines frequent itemsets from transaction data.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/eclat/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
