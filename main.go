package main

import "github.com/nilepay-solutions/ms-go-manual-payments/cmd"

func main() {
	cmd.Execute()
}
