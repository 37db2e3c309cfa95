package main

import "github.com/mcoot/teamscore/internal/cli"

func main() {
	cli.Execute()
}
