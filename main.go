package main

import "sublookup/cmd"

func main() {
	cmd.Execute()
}
