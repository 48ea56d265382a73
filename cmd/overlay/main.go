package main

import "github.com/lobbysight/lobbysight/internal/cli"

func main() {
	cli.Execute()
}
