package main

import "github.com/mcoot/feedbackboard/internal/cli"

func main() {
	cli.Execute()
}
