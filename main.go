package main

import "github.com/pflegewerk/lohnmonitor/cmd"

func main() {
	cmd.Execute()
}
