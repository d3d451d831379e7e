package main

import "github.com/mabhi256/migration-analyzer/cmd"

func main() {
	cmd.Execute()
}
