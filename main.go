package main

import "github.com/KaramelBytes/pestwatch/cmd"

func main() {
	cmd.Execute()
}
