// Command chainmap loads key/value pairs into a chainmap.Table and prints
// the table's bucket dump, statistics or per-key hashes.
package main

import (
	"os"
)

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := a.rootCmd().Execute(); err != nil {
		a.log.Error("chainmap failed", "err", err)
		os.Exit(1)
	}
}
