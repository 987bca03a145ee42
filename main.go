package main

import "tasky/cmd"

func main() {
	cmd.Execute()
}
