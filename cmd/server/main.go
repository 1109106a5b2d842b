package main

import "github.com/eslsoft/lexdrill/cmd"

func main() {
	cmd.Execute()
}
