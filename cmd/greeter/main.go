// Package main provides greeter, a command-line client for the hello-near
// greeting contract. It reads and updates the greeting on mainnet or testnet,
// lists local NEAR credentials and can serve the same operations over HTTP.
package main

import (
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
