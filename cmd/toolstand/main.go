package main

import "github.com/toolstand/toolstand/cmd/toolstand/cmd"

func main() {
	cmd.Execute()
}
