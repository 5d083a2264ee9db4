package main

import "github.com/K0NGR3SS/triagekit/commands"

func main() {
	commands.Execute()
}
