package ac_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAC(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "access-control secret sharing suite")
}
