package main

import (
	"os"

	"github.com/authdata/authdata/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
