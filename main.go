package main

import "swap-warden/internal/cli"

func main() {
	cli.Execute()
}
