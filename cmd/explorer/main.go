// explorer fetches education statistics and answers questions about them.
//
// Usage:
//
//	explorer repl                                   interactive session
//	explorer ask --dataset <name|#> [--year N] <q>  one-shot fetch and ask
//	explorer datasets                               list selectable datasets
//	explorer serve [--addr :8080]                   JSON API
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
