package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error to its process exit code: 0 success,
// 2 load/parse error, 3 evaluation error, 64 usage error.
func exitCodeFor(err error) int {
	var cliErr cliError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	return usageExitCode
}
