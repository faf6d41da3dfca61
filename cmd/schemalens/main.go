package main

import "schemalens/internal/cli"

func main() {
	cli.Execute()
}
