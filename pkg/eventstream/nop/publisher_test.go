package nop_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wayfarerhq/wayfarer/pkg/eventstream"
	"github.com/wayfarerhq/wayfarer/pkg/eventstream/nop"
)

func TestNopPublisher(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Nop Publisher Suite")
}

var _ = Describe("Publisher", func() {
	It("returns ErrNilAnswerEvent for nil events", func() {
		p := nop.NewPublisher()
		err := p.PublishAnswer(context.Background(), nil)
		Expect(err).To(MatchError(eventstream.ErrNilAnswerEvent))
	})

	It("succeeds for non-nil events", func() {
		p := nop.NewPublisher()
		err := p.PublishAnswer(context.Background(), &eventstream.AnswerProducedEvent{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("closes successfully", func() {
		p := nop.NewPublisher()
		Expect(p.Close()).To(Succeed())
	})
})
