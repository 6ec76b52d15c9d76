package wp

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestWP(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "wp suite")
}
