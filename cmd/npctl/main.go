// Command npctl configures and monitors a SimpleNP keypad.
package main

import "simplenp/internal/cli/cmd"

func main() {
	cmd.Execute()
}
