package main

import "github.com/Alturino/spices/cmd"

func main() {
	cmd.Start()
}
