// Package main is the entry point for the Camos AI Assistant service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/camos-io/camos-assist/cmd/assist/app"
)

func main() {
	app.NewApp().Run()
}
