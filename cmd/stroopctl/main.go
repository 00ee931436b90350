package main

import "github.com/mcoot/stroopgame/internal/cli"

func main() {
	cli.Execute()
}
