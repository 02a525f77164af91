package main

import "github.com/kirananta/storefront/cmd"

func main() {
	cmd.Start()
}
