// Command healthchat is a public health assistant for the terminal and the
// relay that serves it.
package main

import "github.com/diogo/healthchat/internal/commands"

func main() {
	commands.Execute()
}
