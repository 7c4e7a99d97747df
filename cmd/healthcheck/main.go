// Package main provides a lightweight health check utility for Docker
// containers. It is statically compiled so it works in scratch-based images
// where wget and curl are unavailable.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

const (
	defaultPort    = "3001"
	requestTimeout = 5 * time.Second
)

// buildHealthURL targets 127.0.0.1 rather than localhost; scratch images have
// no /etc/hosts to resolve the name.
func buildHealthURL(port string) string {
	return fmt.Sprintf("http://127.0.0.1:%s/health", port)
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	client := &http.Client{
		Timeout: requestTimeout,
	}

	resp, err := client.Get(buildHealthURL(port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	// os.Exit bypasses deferred calls, close explicitly
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check returned non-OK status: %d\n", resp.StatusCode)
		os.Exit(1)
	}

	os.Exit(0)
}
