package main

import "takehome/internal/app/cli"

func main() {
	cli.Execute()
}
