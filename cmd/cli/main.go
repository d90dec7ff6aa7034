package main

import "cookbook/cmd/cli/command"

func main() {
	command.Execute()
}
