//go:build tinygo

package main

import (
	"simplenp/app"
	"simplenp/hal"
)

func main() {
	app.Run(hal.New())
}
