package main

import "prdoc/internal/cli"

func main() {
	cli.Execute()
}
