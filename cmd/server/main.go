package main

import (
	"context"
	"log"

	"github.com/okolodev/credvault/internal/server"
	"github.com/okolodev/credvault/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
