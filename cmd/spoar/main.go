package main

import (
	"github.com/habiliai/spoar/cmd/spoar/cmd"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cmd.Execute()
}
