// Package main is the entry point of presentation-service (HTTP + WebSocket).
package main

import (
	"log"

	"github.com/slidecast/presentation-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
