package main

import "desfondo/cmd"

func main() {
	cmd.Execute()
}
