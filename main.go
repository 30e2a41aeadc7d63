package main

import (
	"github.com/AzielCF/az-devocional/cmd"
)

func main() {
	cmd.Execute()
}
