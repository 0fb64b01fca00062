package main

import "github.com/marginly/marginly/cmd"

func main() {
	cmd.Execute()
}
