package main

import (
	"fmt"
	"os"
)

// @title Layout Proxy API
// @version 1.0
// @description Proxy for the headless layout service that patches component fields on targeted routes.
// @BasePath /
func main() {
	if err := NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
