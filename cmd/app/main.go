package main

import (
	"ColorWinApi/internal/app"
)

func main() {
	app.Start()
}
