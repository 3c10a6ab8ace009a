package main

import (
	"fmt"
	"os"

	"github.com/OwlyNest/owlyc/internal/exitcode"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "owlyc: %v\n", err)
		os.Exit(exitcode.Get(err))
	}
}
