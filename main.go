package main

import (
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/school-admin-api/app"
)

func main() {
	// setup and run app
	err := app.SetupAndRunServer()
	if err != nil {
		log.Error(err)
		panic(err)
	}
}
