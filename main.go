package main

import "github.com/geostamp/geostamp/cmd"

func main() {
	cmd.Execute()
}
