package main

import "frameset/internal/cli"

func main() {
	cli.Execute()
}
