package main

import "github.com/pfrederiksen/cfp-events/internal/cli"

func main() {
	cli.Execute()
}
