package main

import "github.com/KaramelBytes/ecboard/cmd"

func main() {
	cmd.Execute()
}
