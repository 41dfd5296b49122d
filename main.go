package main

import "github.com/pidex/pidex/cmd"

func main() {
	cmd.Execute()
}
