package ingest_test

import (
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wayfarerhq/wayfarer/pkg/ingest"
)

var _ = Describe("Chunker", func() {
	It("keeps a short document in a single passage", func() {
		doc := &ingest.Document{
			URL:   "https://www.immigration.gov.tw/page",
			Title: "工作許可",
			Text:  "外國人申請工作許可須知。",
		}

		passages := ingest.SplitDocument(doc, 100)

		Expect(passages).To(HaveLen(1))
		Expect(passages[0].ID).To(Equal("https://www.immigration.gov.tw/page#0"))
		Expect(passages[0].Section).To(Equal("Section 1"))
		Expect(passages[0].Title).To(Equal("工作許可"))
		Expect(passages[0].Text).To(Equal("外國人申請工作許可須知。"))
	})

	It("splits on paragraph boundaries before size", func() {
		doc := &ingest.Document{
			URL:  "https://example.test/doc",
			Text: strings.Repeat("甲", 60) + "\n\n" + strings.Repeat("乙", 60),
		}

		passages := ingest.SplitDocument(doc, 100)

		Expect(passages).To(HaveLen(2))
		Expect(passages[0].Text).To(Equal(strings.Repeat("甲", 60)))
		Expect(passages[1].Text).To(Equal(strings.Repeat("乙", 60)))
	})

	It("hard-splits an oversized paragraph on rune boundaries", func() {
		doc := &ingest.Document{
			URL:  "https://example.test/doc",
			Text: strings.Repeat("簽", 250),
		}

		passages := ingest.SplitDocument(doc, 100)

		Expect(passages).To(HaveLen(3))
		for _, p := range passages {
			Expect(utf8.RuneCountInString(p.Text)).To(BeNumerically("<=", 100))
			Expect(utf8.ValidString(p.Text)).To(BeTrue())
		}
	})

	It("is deterministic", func() {
		doc := &ingest.Document{
			URL:  "https://example.test/doc",
			Text: strings.Repeat("line one\n\nline two\n\n", 50),
		}

		first := ingest.SplitDocument(doc, 120)
		second := ingest.SplitDocument(doc, 120)

		Expect(second).To(Equal(first))
	})

	It("prefixes contextual text with title and section", func() {
		doc := &ingest.Document{
			URL:   "https://example.test/doc",
			Title: "居留證",
			Text:  "申請流程如下。",
		}

		passages := ingest.SplitDocument(doc, 100)
		Expect(ingest.ContextualText(passages[0])).To(Equal("居留證 - Section 1: 申請流程如下。"))
	})

	It("omits the title prefix when absent", func() {
		doc := &ingest.Document{
			URL:  "https://example.test/doc",
			Text: "申請流程如下。",
		}

		passages := ingest.SplitDocument(doc, 100)
		Expect(ingest.ContextualText(passages[0])).To(Equal("Section 1: 申請流程如下。"))
	})
})
