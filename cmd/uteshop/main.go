package main

import "github.com/William2207/uteshop/cli/internal/cmd"

func main() {
	cmd.Execute()
}
