package main

import "github.com/josh-kwaku/edificio/internal/cli"

func main() {
	cli.Execute()
}
