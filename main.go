package main

import "github.com/vibast-solutions/ms-go-accounts/cmd"

func main() {
	cmd.Execute()
}
