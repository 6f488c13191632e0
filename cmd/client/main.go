package main

import "studynotes/cmd/client/cmd"

func main() {
	cmd.Execute()
}
