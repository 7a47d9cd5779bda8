package main

import "github.com/KaramelBytes/heartstat-cli/cmd"

func main() {
	cmd.Execute()
}
