package main

import "vmselector/cmd"

func main() {
	cmd.Execute()
}
