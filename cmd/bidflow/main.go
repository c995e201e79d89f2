// Command bidflow turns tender documents into requirement summaries and
// proposals.
package main

import (
	"os"

	"github.com/custodia-labs/bidflow/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(version, newServices); err != nil {
		os.Exit(1)
	}
}
