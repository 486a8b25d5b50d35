package main

import (
	"github.com/quizhub/quizctl/internal/cli"
)

func main() {
	cli.Execute()
}
