package main

import "github.com/tokenforge/tokenctl/cmd"

func main() {
	cmd.Execute()
}
