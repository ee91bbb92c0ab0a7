package eventstreamutils

import (
	"fmt"

	"github.com/wayfarerhq/wayfarer/pkg/eventstream"
	"github.com/wayfarerhq/wayfarer/pkg/eventstream/kafka"
	"github.com/wayfarerhq/wayfarer/pkg/eventstream/nop"
)

// NewPublisher builds an eventstream publisher for the named driver. An
// empty driver disables publishing.
func NewPublisher(driver string, brokers []string, topic string) (eventstream.Publisher, error) {
	switch driver {
	case "", "nop":
		return nop.NewPublisher(), nil
	case "kafka":
		return kafka.NewPublisher(kafka.PublisherConfig{
			Brokers: brokers,
			Topic:   topic,
		})
	default:
		return nil, fmt.Errorf("unknown eventstream driver: %s", driver)
	}
}
