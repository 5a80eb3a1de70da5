package main

import (
	"context"

	"playscraper/cmd/playscraper/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
