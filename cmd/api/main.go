// Package main is the entry point for the campus parking permit API.
//
// @title           SCE Parking Permit API
// @version         1.0
// @description     Backend service for campus parking permit submissions,
// @description     student request reviews, and roster management.
//
// @host      localhost:8080
// @BasePath  /api
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a JWT token.
package main

import (
	"fmt"
	"os"

	"github.com/scedev/parkpermit/internal/server"
)

func main() {
	srv, err := server.NewServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize server: %v\n", err)
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "server exited with error: %v\n", err)
		os.Exit(1)
	}
}
