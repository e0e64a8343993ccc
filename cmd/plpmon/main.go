// Package main is the entry point for the PLP monitor.
package main

import "plp-monitor/cmd/plpmon/cmd"

func main() {
	cmd.Execute()
}
