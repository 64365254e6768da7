package main

import "github.com/tesh254/wikimd/cmd"

func main() {
	cmd.Execute()
}
