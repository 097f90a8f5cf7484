package main

import (
	"log"

	"github.com/futig/rag-chatbot/internal/builder"
	"github.com/futig/rag-chatbot/internal/config"
)

func main() {
	app, err := builder.Build(config.ParseFlags())
	if err != nil {
		log.Fatal("Failed to build application:", err)
	}

	if err := app.Run(); err != nil {
		log.Fatal("Application error:", err)
	}
}
