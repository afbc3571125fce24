package main

import (
	"context"

	"hauntops-backend/cmd/hauntops/commands"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()
	commands.ExecuteContext(context.Background())
}
