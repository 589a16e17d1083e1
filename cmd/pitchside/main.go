package main

import (
	"os"

	"pitchside/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
