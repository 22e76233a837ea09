package main

import "github.com/ferreirogomes/rtoken/cli"

func main() {
	cli.Execute()
}
