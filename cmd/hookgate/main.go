package main

import "github.com/avolkov/hookgate/internal/cli"

func main() {
	cli.Execute()
}
