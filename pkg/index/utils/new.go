// Package indexutils is the index utility package
package indexutils

import (
	"fmt"
	"net"
	"strconv"

	"go.uber.org/zap"

	"github.com/wayfarerhq/wayfarer/pkg/index"
	"github.com/wayfarerhq/wayfarer/pkg/index/inmemory"
	qdrantdriver "github.com/wayfarerhq/wayfarer/pkg/index/qdrant"
)

type NewDriverOpts struct {
	ProviderType string
	Target       string
	Collection   string
	Dimensions   int
	APIKey       string
	Logger       *zap.Logger
}

func NewDriver(o *NewDriverOpts) (index.Driver, error) {
	switch o.ProviderType {
	case "qdrant":
		host, port, err := splitTarget(o.Target)
		if err != nil {
			return nil, err
		}
		return qdrantdriver.NewDriver(qdrantdriver.Config{
			Host:           host,
			Port:           port,
			APIKey:         o.APIKey,
			CollectionName: o.Collection,
			Dimensions:     o.Dimensions,
		}, o.Logger)
	case "memory":
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unsupported index provider: %s", o.ProviderType)
	}
}

// splitTarget parses "host:port" with the conventional qdrant gRPC port as
// the default.
func splitTarget(target string) (string, int, error) {
	if target == "" {
		return "localhost", 6334, nil
	}

	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return target, 6334, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid index target port %q: %w", portStr, err)
	}
	return host, port, nil
}
