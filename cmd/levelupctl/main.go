package main

import (
	"os"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/hongminglow/levelup-be/internal/cli"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
