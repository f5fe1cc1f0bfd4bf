package main

import "github.com/ckvault/ckvault/cmd"

func main() {
	cmd.Execute()
}
