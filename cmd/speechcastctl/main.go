// Command speechcastctl is the admin CLI for the speechcast archive:
// ad-hoc ingestion runs, bulk key validation, and curated-model
// inspection, outside of the HTTP surface.
package main

import (
	"os"

	"github.com/archivecast/podcaster/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
