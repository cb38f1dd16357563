package ac_test

import (
	"crypto/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shardsign/tss-core/pkg/ac"
	"github.com/shardsign/tss-core/pkg/math/curve"
	"github.com/shardsign/tss-core/pkg/math/sample"
	"github.com/shardsign/tss-core/pkg/party"
)

var _ = Describe("Node.Quorum", func() {
	alice, bob, carol := party.NewID("alice"), party.NewID("bob"), party.NewID("carol")
	tree := ac.Threshold(2, ac.Leaf(alice), ac.Leaf(bob), ac.Leaf(carol))

	It("is satisfied once enough leaves are present", func() {
		Expect(tree.Quorum(map[party.ID]bool{alice: true, bob: true})).To(BeTrue())
		Expect(tree.Quorum(map[party.ID]bool{alice: true})).To(BeFalse())
	})

	It("rejects an AND gate missing one child", func() {
		dual := ac.And(ac.Leaf(alice), ac.Leaf(bob))
		Expect(dual.Quorum(map[party.ID]bool{alice: true})).To(BeFalse())
		Expect(dual.Quorum(map[party.ID]bool{alice: true, bob: true})).To(BeTrue())
	})

	It("accepts an OR gate with any one child", func() {
		either := ac.Or(ac.Leaf(alice), ac.Leaf(bob))
		Expect(either.Quorum(map[party.ID]bool{bob: true})).To(BeTrue())
		Expect(either.Quorum(map[party.ID]bool{})).To(BeFalse())
	})
})

var _ = Describe("Share and Reconstruct", func() {
	group := curve.Secp256k1{}
	alice, bob, carol, dave := party.NewID("alice"), party.NewID("bob"), party.NewID("carol"), party.NewID("dave")

	It("reconstructs the secret from a flat THRESHOLD quorum", func() {
		secret := sample.Scalar(rand.Reader, group)
		tree := ac.Threshold(2, ac.Leaf(alice), ac.Leaf(bob), ac.Leaf(carol))

		shares, err := ac.Share(group, tree, secret)
		Expect(err).NotTo(HaveOccurred())
		Expect(shares.Leaves).To(HaveLen(3))

		present := map[party.ID]bool{alice: true, carol: true}
		got, err := ac.Reconstruct(group, tree, shares.Leaves, present)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Equal(secret)).To(BeTrue())
	})

	It("reconstructs through a nested AND-of-THRESHOLD tree", func() {
		secret := sample.Scalar(rand.Reader, group)
		tree := ac.And(
			ac.Leaf(alice),
			ac.Threshold(2, ac.Leaf(bob), ac.Leaf(carol), ac.Leaf(dave)),
		)

		shares, err := ac.Share(group, tree, secret)
		Expect(err).NotTo(HaveOccurred())

		present := map[party.ID]bool{alice: true, bob: true, dave: true}
		got, err := ac.Reconstruct(group, tree, shares.Leaves, present)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Equal(secret)).To(BeTrue())
	})

	It("fails to reconstruct below quorum", func() {
		secret := sample.Scalar(rand.Reader, group)
		tree := ac.Threshold(2, ac.Leaf(alice), ac.Leaf(bob), ac.Leaf(carol))
		shares, err := ac.Share(group, tree, secret)
		Expect(err).NotTo(HaveOccurred())

		_, err = ac.Reconstruct(group, tree, shares.Leaves, map[party.ID]bool{alice: true})
		Expect(err).To(HaveOccurred())
	})

	It("agrees regardless of which quorum subset reconstructs", func() {
		secret := sample.Scalar(rand.Reader, group)
		tree := ac.Threshold(2, ac.Leaf(alice), ac.Leaf(bob), ac.Leaf(carol))
		shares, err := ac.Share(group, tree, secret)
		Expect(err).NotTo(HaveOccurred())

		got1, err := ac.Reconstruct(group, tree, shares.Leaves, map[party.ID]bool{alice: true, bob: true})
		Expect(err).NotTo(HaveOccurred())
		got2, err := ac.Reconstruct(group, tree, shares.Leaves, map[party.ID]bool{bob: true, carol: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(got1.Equal(got2)).To(BeTrue())
	})
})

var _ = Describe("ReconstructExponent", func() {
	group := curve.Secp256k1{}
	alice, bob, carol := party.NewID("alice"), party.NewID("bob"), party.NewID("carol")

	It("matches secret*G without ever combining private shares", func() {
		secret := sample.Scalar(rand.Reader, group)
		tree := ac.Threshold(2, ac.Leaf(alice), ac.Leaf(bob), ac.Leaf(carol))

		shares, err := ac.Share(group, tree, secret)
		Expect(err).NotTo(HaveOccurred())

		publicShares := make(map[party.ID]curve.Point, len(shares.Leaves))
		for id, s := range shares.Leaves {
			publicShares[id] = s.ActOnBase()
		}

		present := map[party.ID]bool{alice: true, carol: true}
		got, err := ac.ReconstructExponent(group, tree, publicShares, present)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Equal(secret.ActOnBase())).To(BeTrue())
	})
})

var _ = Describe("AdditiveShares", func() {
	group := curve.Secp256k1{}
	alice, bob, carol, dave := party.NewID("alice"), party.NewID("bob"), party.NewID("carol"), party.NewID("dave")

	It("re-expresses a THRESHOLD quorum as additive shares summing to the secret", func() {
		secret := sample.Scalar(rand.Reader, group)
		tree := ac.Threshold(2, ac.Leaf(alice), ac.Leaf(bob), ac.Leaf(carol))
		shares, err := ac.Share(group, tree, secret)
		Expect(err).NotTo(HaveOccurred())

		present := map[party.ID]bool{alice: true, carol: true}
		additive, err := ac.AdditiveShares(group, tree, shares.Leaves, present)
		Expect(err).NotTo(HaveOccurred())
		Expect(additive).To(HaveLen(2))

		sum := group.NewScalar()
		for _, v := range additive {
			sum = sum.Add(v)
		}
		Expect(sum.Equal(secret)).To(BeTrue())
	})

	It("sums to the secret when every child of a THRESHOLD node is present", func() {
		secret := sample.Scalar(rand.Reader, group)
		tree := ac.Threshold(2, ac.Leaf(alice), ac.Leaf(bob), ac.Leaf(carol), ac.Leaf(dave))
		shares, err := ac.Share(group, tree, secret)
		Expect(err).NotTo(HaveOccurred())

		additive, err := ac.AdditiveShares(group, tree, shares.Leaves, map[party.ID]bool{alice: true, bob: true, carol: true, dave: true})
		Expect(err).NotTo(HaveOccurred())

		sum := group.NewScalar()
		for _, v := range additive {
			sum = sum.Add(v)
		}
		Expect(sum.Equal(secret)).To(BeTrue())
	})

	It("propagates through an AND node unweighted", func() {
		secret := sample.Scalar(rand.Reader, group)
		tree := ac.And(ac.Leaf(alice), ac.Leaf(bob))
		shares, err := ac.Share(group, tree, secret)
		Expect(err).NotTo(HaveOccurred())

		additive, err := ac.AdditiveShares(group, tree, shares.Leaves, map[party.ID]bool{alice: true, bob: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(additive[alice].Equal(shares.Leaves[alice])).To(BeTrue())
		Expect(additive[bob].Equal(shares.Leaves[bob])).To(BeTrue())
	})
})

var _ = Describe("VerifyLeaf", func() {
	group := curve.Secp256k1{}
	alice, bob, carol := party.NewID("alice"), party.NewID("bob"), party.NewID("carol")

	It("accepts a genuine share and rejects a tampered one", func() {
		secret := sample.Scalar(rand.Reader, group)
		tree := ac.Threshold(2, ac.Leaf(alice), ac.Leaf(bob), ac.Leaf(carol))
		shares, err := ac.Share(group, tree, secret)
		Expect(err).NotTo(HaveOccurred())

		ok, err := ac.VerifyLeaf(group, tree, alice, shares.Leaves[alice], shares.NodeCommitments)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		forged := sample.Scalar(rand.Reader, group)
		ok, err = ac.VerifyLeaf(group, tree, alice, forged, shares.NodeCommitments)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("verifies a leaf nested under a chain of THRESHOLD ancestors", func() {
		secret := sample.Scalar(rand.Reader, group)
		tree := ac.Threshold(1,
			ac.Threshold(2, ac.Leaf(alice), ac.Leaf(bob), ac.Leaf(carol)),
		)
		shares, err := ac.Share(group, tree, secret)
		Expect(err).NotTo(HaveOccurred())

		ok, err := ac.VerifyLeaf(group, tree, bob, shares.Leaves[bob], shares.NodeCommitments)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})
})
