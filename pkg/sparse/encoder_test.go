package sparse_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wayfarerhq/wayfarer/pkg/sparse"
)

func TestSparse(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Sparse Suite")
}

var _ = Describe("Encode", func() {
	It("is deterministic for a given query", func() {
		first := sparse.Encode("what visa do I need", sparse.WeightingFrequency)
		second := sparse.Encode("what visa do I need", sparse.WeightingFrequency)
		Expect(second).To(Equal(first))
	})

	It("returns terms in ascending index order", func() {
		terms := sparse.Encode("alpha beta gamma delta", sparse.WeightingUniform)
		for i := 1; i < len(terms); i++ {
			Expect(terms[i].Index).To(BeNumerically(">", terms[i-1].Index))
		}
	})

	It("counts repeats under frequency weighting", func() {
		terms := sparse.Encode("visa visa permit", sparse.WeightingFrequency)
		Expect(terms).To(HaveLen(2))

		weights := map[float32]int{}
		for _, t := range terms {
			weights[t.Weight]++
		}
		Expect(weights[2]).To(Equal(1))
		Expect(weights[1]).To(Equal(1))
	})

	It("flattens repeats under uniform weighting", func() {
		terms := sparse.Encode("visa visa permit", sparse.WeightingUniform)
		Expect(terms).To(HaveLen(2))
		for _, t := range terms {
			Expect(t.Weight).To(Equal(float32(1)))
		}
	})

	It("ignores case and punctuation", func() {
		Expect(sparse.Encode("Visa, permit!", sparse.WeightingUniform)).
			To(Equal(sparse.Encode("visa permit", sparse.WeightingUniform)))
	})

	It("returns no terms for empty or punctuation-only input", func() {
		Expect(sparse.Encode("", sparse.WeightingFrequency)).To(BeEmpty())
		Expect(sparse.Encode("?! --", sparse.WeightingFrequency)).To(BeEmpty())
	})
})

var _ = Describe("Tokenize", func() {
	It("splits latin text on word boundaries", func() {
		Expect(sparse.Tokenize("Work permit renewal")).To(Equal([]string{"work", "permit", "renewal"}))
	})

	It("splits CJK runs into character bigrams", func() {
		Expect(sparse.Tokenize("工作簽證")).To(Equal([]string{"工作", "作簽", "簽證"}))
	})

	It("keeps a lone CJK character", func() {
		Expect(sparse.Tokenize("簽")).To(Equal([]string{"簽"}))
	})

	It("handles mixed scripts", func() {
		tokens := sparse.Tokenize("APRC 永久居留")
		Expect(tokens).To(ContainElement("aprc"))
		Expect(tokens).To(ContainElement("永久"))
	})
})
