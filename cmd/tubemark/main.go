package main

import (
	"log"

	"github.com/mkodama/tubemark/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ tubemark failed to start: %v", err)
	}
}
