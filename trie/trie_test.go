package trie

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Trie", func() {
	var sut *Trie

	BeforeEach(func() {
		sut = NewTrie()
	})

	Describe("Basic operations", func() {
		When("Trie is created", func() {
			It("should be empty", func() {
				Expect(sut.IsEmpty()).Should(BeTrue())
			})

			It("should not match anything", func() {
				Expect(sut.Find([]string{"com", "example"}, false)).Should(Equal(Match{}))
			})

			It("should not insert a rule without labels", func() {
				sut.Insert(nil, Exact, ICANN)
				Expect(sut.IsEmpty()).Should(BeTrue())
			})
		})

		When("Inserting a rule twice", func() {
			It("should keep a single termination", func() {
				sut.Insert([]string{"com"}, Exact, ICANN)
				sut.Insert([]string{"com"}, Exact, ICANN)

				Expect(sut.Find([]string{"com"}, false)).Should(Equal(Match{Labels: 1}))
			})
		})
	})

	Describe("Longest match", func() {
		BeforeEach(func() {
			sut.Insert([]string{"uk"}, Exact, ICANN)
			sut.Insert([]string{"uk", "co"}, Exact, ICANN)
			sut.Insert([]string{"com"}, Exact, ICANN)
		})

		It("should prefer the deeper rule", func() {
			match := sut.Find([]string{"uk", "co", "bbc", "forums"}, false)

			Expect(match.Labels).Should(Equal(2))
		})

		It("should match a single label rule", func() {
			match := sut.Find([]string{"com", "cnn", "news", "forums"}, false)

			Expect(match.Labels).Should(Equal(1))
		})

		It("should not match an unknown TLD", func() {
			match := sut.Find([]string{"notavalidsuffix", "google"}, false)

			Expect(match.Labels).Should(BeZero())
		})

		It("should match when the host equals the rule", func() {
			match := sut.Find([]string{"uk", "co"}, false)

			Expect(match.Labels).Should(Equal(2))
		})
	})

	Describe("Wildcard and exception rules", func() {
		BeforeEach(func() {
			sut.Insert([]string{"ck", "*"}, Wildcard, ICANN)
			sut.Insert([]string{"ck", "www"}, Exception, ICANN)
		})

		It("should match any label below the wildcard", func() {
			match := sut.Find([]string{"ck", "foo"}, false)

			Expect(match.Labels).Should(Equal(2))
		})

		It("should match below the wildcard with extra labels", func() {
			match := sut.Find([]string{"ck", "foo", "www"}, false)

			Expect(match.Labels).Should(Equal(2))
		})

		It("should let the exception override the wildcard at the same depth", func() {
			match := sut.Find([]string{"ck", "www"}, false)

			Expect(match.Labels).Should(Equal(1))
		})

		It("should not match the bare wildcard parent", func() {
			match := sut.Find([]string{"ck"}, false)

			Expect(match.Labels).Should(BeZero())
		})
	})

	Describe("Origin filtering", func() {
		BeforeEach(func() {
			sut.Insert([]string{"com"}, Exact, ICANN)
			sut.Insert([]string{"com", "blogspot"}, Exact, Private)
			sut.Insert([]string{"dev", "mycompany"}, Exact, Extra)
		})

		It("should skip private rules by default", func() {
			match := sut.Find([]string{"com", "blogspot", "waiterrant"}, false)

			Expect(match.Labels).Should(Equal(1))
			Expect(match.IsPrivate).Should(BeFalse())
		})

		It("should use private rules if enabled", func() {
			match := sut.Find([]string{"com", "blogspot", "waiterrant"}, true)

			Expect(match.Labels).Should(Equal(2))
			Expect(match.IsPrivate).Should(BeTrue())
		})

		It("should always use extra rules", func() {
			match := sut.Find([]string{"dev", "mycompany", "api"}, false)

			Expect(match.Labels).Should(Equal(2))
			Expect(match.IsPrivate).Should(BeFalse())
		})
	})
})
