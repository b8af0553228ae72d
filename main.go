package main

import "github.com/iksnae/standup-bot/cmd"

func main() {
	cmd.Execute()
}
