package main

import "github.com/hengadev/vaultx/cmd/vaultctl/cmd"

func main() {
	cmd.Execute()
}
