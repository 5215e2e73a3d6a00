package main

import "cpk-tools/internal/cli"

func main() {
	cli.Execute()
}
