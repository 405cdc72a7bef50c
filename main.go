package main

import "github.com/finlync/taxgate/cmd"

func main() {
	cmd.Execute()
}
