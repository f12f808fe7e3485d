package main

import "storefront-backend/internal/cli"

func main() {
	cli.Execute()
}
