package main

import "github.com/sollpay/sollpay-programs/internal/cli"

func main() {
	cli.Execute()
}
