// Command govpower inspects the governance power strategies of a deployment:
// it derives strategy params, user params, pre-calls and voting power.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
