// Health probe for container HEALTHCHECK:
//
//	HEALTHCHECK CMD ["/ping"]
//
// Exits 0 when /healthz reports the API and its database as up.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPort    = 8080
	healthEndpoint = "/healthz"
	requestTimeout = 2 * time.Second

	// exit codes
	codeRequestFailed = 2
	codeUnhealthy     = 3
)

// healthResp mirrors the /healthz body.
type healthResp struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

var errUnhealthy = errors.New("service reported unhealthy")

func main() {
	host := flag.String("host", "localhost", "Host the API listens on")
	port := flag.Int("port", detectPort(), "API port, defaults to APP_PORT")
	flag.Parse()

	url := fmt.Sprintf("http://%s:%d%s", *host, *port, healthEndpoint)

	h, err := probe(url, requestTimeout)
	switch {
	case errors.Is(err, errUnhealthy):
		log.Printf("%v: status=%q error=%q", err, h.Status, h.Error)
		os.Exit(codeUnhealthy)
	case err != nil:
		log.Printf("probe %s: %v", url, err)
		os.Exit(codeRequestFailed)
	}

	log.Printf("service healthy on port %d", *port)
}

// probe calls url and decodes the health report. A 503 still carries a
// report, so the body is decoded before the status is judged.
func probe(url string, timeout time.Duration) (healthResp, error) {
	var h healthResp
	code, _, errs := fiber.Get(url).Timeout(timeout).Struct(&h)
	if code == 0 && len(errs) > 0 {
		return h, errors.Join(errs...)
	}
	if code != fiber.StatusOK || h.Status != "ok" {
		return h, fmt.Errorf("%w (HTTP %d)", errUnhealthy, code)
	}
	return h, nil
}

// detectPort parses APP_PORT and falls back to defaultPort.
func detectPort() int {
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p <= 65535 {
			return p
		}
	}
	return defaultPort
}
