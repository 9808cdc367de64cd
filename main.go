package main

import "github.com/xtractpay/xtractpay/cmd"

func main() {
	cmd.Execute()
}
