// Command ledgerd runs the fiscal ledger API and its maintenance tasks.
package main

import (
	"errors"
	"fmt"
	"os"

	_ "time/tzdata" // ledger.timezone must resolve on hosts without zoneinfo
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errChainBroken) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
