package main

import "github.com/dmitrivolkov/safety-management/cmd"

func main() {
	cmd.Execute()
}
