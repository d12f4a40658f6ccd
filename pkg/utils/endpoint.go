package utils

import (
	"fmt"
)

// Endpoint is a host:port pair an ssh connection dials
type Endpoint struct {
	Host string
	Port int
}

// NewEndpoint builds an Endpoint object from an ssh url
func NewEndpoint(s string) (*Endpoint, error) {
	parsed, err := ParseSSHUrl(s)
	if err != nil {
		return nil, err
	}
	return &Endpoint{
		Host: parsed.Host,
		Port: parsed.Port,
	}, nil
}

// String returns the string representation of the endpoint
func (endpoint *Endpoint) String() string {
	return fmt.Sprintf("%s:%d", endpoint.Host, endpoint.Port)
}
