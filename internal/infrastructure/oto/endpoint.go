package oto

import "fmt"

// Destinations understood by the payload builder
const (
	DestinationCreateOrder = "createOrder"
	DestinationCancelOrder = "cancelOrder"
)

const (
	// ProductionAPIURL is the production REST endpoint
	ProductionAPIURL = "https://api.tryoto.com/rest/v2"
	// SandboxAPIURL is the sandbox REST endpoint
	SandboxAPIURL = "https://sandbox.tryoto.com/rest/v2"
)

// URL returns the endpoint for destination, on the sandbox host when the
// configuration enables it. destination is not checked against the known values.
func URL(cfg Config, destination string) string {
	if cfg.IsSandbox() {
		return fmt.Sprintf("%s/%s", SandboxAPIURL, destination)
	}
	return fmt.Sprintf("%s/%s", ProductionAPIURL, destination)
}
