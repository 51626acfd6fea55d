package main

import "github.com/tychodev/tycho/cmd"

func main() {
	cmd.Execute()
}
