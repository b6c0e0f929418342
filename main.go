package main

import "dat-catalog/cmd"

func main() {
	cmd.Execute()
}
