package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/MrSnakeDoc/staticsite/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "❌ staticsite: %s\n", strings.ReplaceAll(err.Error(), "\n", "; "))
		os.Exit(1)
	}
}
