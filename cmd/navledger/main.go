package main

import "github.com/linksignis/navledger/internal/cli"

func main() {
	cli.Execute()
}
