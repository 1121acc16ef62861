package main

import "github.com/bascanada/smartsearch/cmd"

func main() {
	cmd.Execute()
}
