package main

import "github.com/Mohsinsiddi/w3wrap/cmd"

func main() {
	cmd.Execute()
}
