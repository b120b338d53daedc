// ABOUTME: Entry point for the spendx CLI
// ABOUTME: Terminal client for the SpendX personal finance backend

package main

import (
	"fmt"
	"os"

	"github.com/PrathikReddy560/SpendX/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
