package dotdir_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wayfarerhq/wayfarer/pkg/dotdir"
)

func TestDotdir(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dotdir Suite")
}

var _ = Describe("Manager", func() {
	var (
		m      *dotdir.Manager
		tmpDir string
	)

	BeforeEach(func() {
		m = dotdir.NewManager()

		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)
	})

	Describe("Target", func() {
		It("uses the override directory and creates it", func() {
			override := filepath.Join(tmpDir, "custom")
			target, err := m.Target(override)

			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal(override))
			Expect(override).To(BeADirectory())
		})
	})

	Describe("profile persistence", func() {
		It("returns nil when no profile is saved", func() {
			profile, err := m.LoadProfile(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile).To(BeNil())
		})

		It("round-trips a saved profile", func() {
			saved := map[string]string{
				"nationality": "加拿大",
				"visa_type":   "居留簽證",
			}
			Expect(m.SaveProfile(saved, tmpDir)).To(Succeed())

			loaded, err := m.LoadProfile(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(saved))
		})

		It("rejects a nil profile", func() {
			Expect(m.SaveProfile(nil, tmpDir)).NotTo(Succeed())
		})

		It("clears a saved profile", func() {
			Expect(m.SaveProfile(map[string]string{"nationality": "x"}, tmpDir)).To(Succeed())
			Expect(m.ClearProfile(tmpDir)).To(Succeed())

			profile, err := m.LoadProfile(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile).To(BeNil())
		})

		It("clearing an absent profile succeeds", func() {
			Expect(m.ClearProfile(tmpDir)).To(Succeed())
		})
	})
})
