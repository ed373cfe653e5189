// Curhat: a supportive-listening conversation companion.
//
// Curhat listens, validates, asks gentle open questions about what the user
// is going through and offers one reflection per topic. It runs as a terminal
// chat or as an MCP server so any AI host can relay the conversation.
//
// Usage:
//
//	curhat            # Chat in the terminal (same as "curhat chat")
//	curhat serve      # Start MCP server (stdio transport)
//	curhat history    # List recorded conversations
//	curhat schema     # Print the content pack JSON schema
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
