// Command ccdtrace is the operator CLI entry point: it loads BSP map files
// and runs collision traces against them (package cmd).
package main

import "github.com/bloodmagesoftware/collide/cmd"

func main() {
	cmd.Execute()
}
