// ABOUTME: Entry point for myjot CLI.
// ABOUTME: Invokes the root Cobra command.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Execute runs the root command. The gateway is closed even when the
// command fails, which skips PersistentPostRunE.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeGateway(); err == nil {
		err = cerr
	}
	return err
}
