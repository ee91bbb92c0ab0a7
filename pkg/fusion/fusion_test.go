package fusion_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wayfarerhq/wayfarer/pkg/fusion"
)

func TestFusion(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Fusion Suite")
}

func ids(fused []fusion.Ranked) []string {
	out := make([]string, len(fused))
	for i, r := range fused {
		out[i] = r.ID
	}
	return out
}

var _ = Describe("ReciprocalRank", func() {
	It("returns empty for no lists", func() {
		Expect(fusion.ReciprocalRank(nil, 60)).To(BeEmpty())
	})

	It("preserves the ordering of a single list", func() {
		fused := fusion.ReciprocalRank([][]string{{"a", "b", "c"}}, 60)
		Expect(ids(fused)).To(Equal([]string{"a", "b", "c"}))
	})

	It("ranks a candidate in both lists above a single-list candidate at the same rank", func() {
		dense := []string{"both", "dense-only"}
		sparse := []string{"both", "sparse-only"}

		fused := fusion.ReciprocalRank([][]string{dense, sparse}, 60)
		Expect(ids(fused)[0]).To(Equal("both"))
	})

	It("depends only on rank order, not on input scores", func() {
		// The caller hands over already-ranked lists, so two rankings
		// derived from wildly different score scales fuse identically.
		lists := [][]string{{"x", "y"}, {"y", "z"}}
		first := fusion.ReciprocalRank(lists, 60)
		second := fusion.ReciprocalRank(lists, 60)
		Expect(ids(second)).To(Equal(ids(first)))
	})

	It("breaks ties by first appearance with the first list winning", func() {
		// a and b each appear once at rank 1, in different lists.
		fused := fusion.ReciprocalRank([][]string{{"a"}, {"b"}}, 60)
		Expect(ids(fused)).To(Equal([]string{"a", "b"}))

		// Swapping list order flips the tie.
		fused = fusion.ReciprocalRank([][]string{{"b"}, {"a"}}, 60)
		Expect(ids(fused)).To(Equal([]string{"b", "a"}))
	})

	It("sums reciprocal rank contributions", func() {
		fused := fusion.ReciprocalRank([][]string{{"a"}, {"a"}}, 60)
		Expect(fused).To(HaveLen(1))
		Expect(fused[0].Score).To(BeNumerically("~", 2.0/61.0, 1e-12))
	})

	It("counts only the best rank for duplicates within one list", func() {
		fused := fusion.ReciprocalRank([][]string{{"a", "a", "b"}}, 60)
		Expect(fused).To(HaveLen(2))
		Expect(fused[0].ID).To(Equal("a"))
		Expect(fused[0].Score).To(BeNumerically("~", 1.0/61.0, 1e-12))
	})

	It("falls back to the default constant when non-positive", func() {
		withDefault := fusion.ReciprocalRank([][]string{{"a"}}, 0)
		Expect(withDefault[0].Score).To(BeNumerically("~", 1.0/(1.0+fusion.DefaultConstant), 1e-12))
	})
})

var _ = Describe("Truncate", func() {
	It("limits to n preserving order", func() {
		fused := fusion.ReciprocalRank([][]string{{"a", "b", "c"}}, 60)
		Expect(ids(fusion.Truncate(fused, 2))).To(Equal([]string{"a", "b"}))
	})

	It("is a no-op for n <= 0 or n beyond length", func() {
		fused := fusion.ReciprocalRank([][]string{{"a", "b"}}, 60)
		Expect(fusion.Truncate(fused, 0)).To(HaveLen(2))
		Expect(fusion.Truncate(fused, 10)).To(HaveLen(2))
	})
})
