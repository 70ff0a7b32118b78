package main

import "github.com/RyanBlaney/bpm-analyzer/cmd"

func main() {
	cmd.Execute()
}
