// Command ringbench exercises the ringkit data structures from the
// command line: an SPSC throughput run over a mirrored buffer, and an
// operational re-check of the mirror aliasing property.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
