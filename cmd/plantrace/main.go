// Command plantrace turns planner search traces into metrics CSVs, landmark
// position histograms and cross-problem summaries.
package main

import (
	"os"

	"github.com/roach88/plantrace/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
