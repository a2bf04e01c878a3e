package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"shopmesh/internal/config"
	"shopmesh/internal/gateway"
)

func main() {
	cfg := config.Load("3000", "")

	app := gateway.New(gateway.Config{
		AuthServiceURL:  cfg.AuthServiceURL,
		UserServiceURL:  cfg.UserServiceURL,
		OrderServiceURL: cfg.OrderServiceURL,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("API Gateway running on port %s", cfg.Port)
		log.Printf("Auth Service: %s", cfg.AuthServiceURL)
		log.Printf("User Service: %s", cfg.UserServiceURL)
		log.Printf("Order Service: %s", cfg.OrderServiceURL)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Gateway failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down gateway...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Gateway stopped")
}
