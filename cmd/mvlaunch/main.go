package main

import "github.com/vaijsc/vision-ordering-ssms/internal/cli"

func main() {
	cli.Execute()
}
