package main

import "github.com/provar-zk/provar/cmd/provar/cmd"

func main() {
	cmd.Execute()
}
