package testutil

import (
	"os"
	"testing"

	"github.com/felixgeelhaar/vamphost/pkg/vamp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertFileExists asserts that a file exists at the given path.
func AssertFileExists(t testing.TB, path string) {
	t.Helper()

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		assert.Fail(t, "file does not exist", "expected file to exist: %s", path)
		return
	}
	require.NoError(t, err)
	assert.False(t, info.IsDir(), "expected file but got directory: %s", path)
}

// AssertSamplesInDelta asserts that two sample slices have the same length
// and differ by at most delta at every index.
func AssertSamplesInDelta(t testing.TB, expected, actual []float32, delta float64, msgAndArgs ...interface{}) {
	t.Helper()

	require.Len(t, actual, len(expected), msgAndArgs...)
	for i := range expected {
		if !assert.InDelta(t, expected[i], actual[i], delta, msgAndArgs...) {
			t.Logf("first mismatch at sample %d", i)
			return
		}
	}
}

// AssertAllZero asserts that every sample is exactly zero.
func AssertAllZero(t testing.TB, samples []float32, msgAndArgs ...interface{}) {
	t.Helper()

	for i, v := range samples {
		if v != 0 {
			assert.Fail(t, "sample is not zero", "sample %d = %v", i, v)
			return
		}
	}
}

// AssertFeatureCount asserts how many features output produced.
func AssertFeatureCount(t testing.TB, fs vamp.FeatureSet, output, expected int, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Len(t, fs[output], expected, msgAndArgs...)
}
