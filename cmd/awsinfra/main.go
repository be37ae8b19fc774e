package main

import (
	"context"
	"os"

	"awsinfra/internal/cli"
)

const version = "0.1.0"

func main() {
	os.Exit(cli.New(version).Run(context.Background(), os.Args))
}
