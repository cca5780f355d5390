package main

import "media-inventory/cmd"

func main() {
	cmd.Execute()
}
