package main

import "github.com/jmcleod/sessiond/cmd/sessiond/cmd"

func main() {
	cmd.Execute()
}
