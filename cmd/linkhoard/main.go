package main

import (
	"log"

	"github.com/linkhoard/linkhoard/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("linkhoard failed to start: %v", err)
	}
}
