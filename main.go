package main

import "github.com/atikulmunna/edlog/internal/cmd"

func main() {
	cmd.Execute()
}
