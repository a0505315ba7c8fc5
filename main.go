package main

import "github.com/notargets/ranscfd/cmd"

func main() {
	cmd.Execute()
}
