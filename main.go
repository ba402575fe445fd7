package main

import "github.com/peerrent/rental-system/cmd"

func main() {
	cmd.Execute()
}
