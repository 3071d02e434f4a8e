package main

import "github.com/user/podboard/internal/cli"

func main() {
	cli.Execute()
}
