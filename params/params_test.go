package params

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	r := New(map[string]interface{}{CovLowThreshFraction: 0.7})
	v, err := r.Get(CovLowThreshFraction)
	require.NoError(t, err)
	expect.EQ(t, v, 0.7)

	v, err = r.Get(CovHighThreshFoldCov)
	require.NoError(t, err)
	expect.EQ(t, v, 100)

	_, err = r.Get("no-such-param")
	assert.True(t, errors.Is(errors.NotExist, err))

	// Overrides need not have a default.
	r = New(map[string]interface{}{"custom": "x"})
	v, err = r.Get("custom")
	require.NoError(t, err)
	expect.EQ(t, v, "x")
}

func TestTyped(t *testing.T) {
	r := New(map[string]interface{}{
		CovLowThreshFoldCov: "30",
		VardictMinAltFrac:   "0.05",
		FastqDownsample:     1000.0,
		FastqTrimmer:        "cutadapt",
	})
	i, err := r.Int(CovLowThreshFoldCov)
	require.NoError(t, err)
	expect.EQ(t, i, 30)
	f, err := r.Float(VardictMinAltFrac)
	require.NoError(t, err)
	expect.EQ(t, f, 0.05)
	i, err = r.Int(FastqDownsample)
	require.NoError(t, err)
	expect.EQ(t, i, 1000)
	s, err := r.String(FastqTrimmer)
	require.NoError(t, err)
	expect.EQ(t, s, "cutadapt")

	f, err = (&Resolver{}).Float(CovHighThreshFraction)
	require.NoError(t, err)
	expect.EQ(t, f, 0.95)

	_, err = New(map[string]interface{}{CovLowThreshFoldCov: "many"}).Int(CovLowThreshFoldCov)
	assert.True(t, errors.Is(errors.Invalid, err))
}

func TestOverridesCopied(t *testing.T) {
	m := map[string]interface{}{CovLowThreshFraction: 0.8}
	r := New(m)
	m[CovLowThreshFraction] = 0.1
	expect.EQ(t, r.Overrides(), map[string]interface{}{CovLowThreshFraction: 0.8})
	expect.EQ(t, len(Names()), len(Defaults))
}
