package main

import "IdeaVault/cmd/tool/commands"

func main() {
	commands.Execute()
}
