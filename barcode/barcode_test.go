package barcode

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Barcode
	}{
		{"AL-P-NA12877-T-03098849-TD1-TT1",
			Barcode{"AL", "P-NA12877", Tumor, "03098849", "TD", "1", "TT", "1"}},
		{"LB-P-NA12877-CFDNA-03098850-TD1-WGS",
			Barcode{"LB", "P-NA12877", CFDNA, "03098850", "TD", "1", "WG", "S"}},
		{"AL-P-00012345-N-03098121-BN12-CM3",
			Barcode{"AL", "P-00012345", Normal, "03098121", "BN", "12", "CM", "3"}},
	}
	for _, test := range tests {
		got, err := Parse(test.in)
		require.NoError(t, err, test.in)
		expect.EQ(t, got, test.want)
		expect.EQ(t, got.String(), test.in)
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{
		"",
		"AL-NA12877-T-03098849-TD1-TT1",
		"AL-P-NA12877-T-03098849-TD1-TT1-X",
		"AL-P--T-03098849-TD1-TT1",
		"AL-P-NA12877-T-03098849-TD-TT1",
		"AL-P-NA12877-T-03098849-TD1-T",
	} {
		_, err := Parse(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(errors.Invalid, err), in)
	}
}

func TestCapture(t *testing.T) {
	a := MustParse("LB-P-NA12877-CFDNA-03098850-TD1-TT1")
	b := MustParse("LB-P-NA12877-CFDNA-03098850-TD2-TT3")
	c := MustParse("LB-P-NA12877-CFDNA-03098850-TD1-TT2")
	expect.EQ(t, a.Capture(), b.Capture())
	expect.EQ(t, a.Capture(), c.Capture())
	expect.EQ(t, a.Capture().String(), "LB-P-NA12877-CFDNA-03098850-TD-TT")

	captures := map[UniqueCapture]int{}
	captures[a.Capture()]++
	captures[b.Capture()]++
	expect.EQ(t, len(captures), 1)

	wgs := MustParse("LB-P-NA12877-CFDNA-03098850-TD1-WGS").Capture()
	assert.True(t, wgs.IsWGS())
	assert.False(t, a.Capture().IsWGS())
	assert.True(t, wgs.IsCancer())
	assert.False(t, wgs.IsNormal())

	n := MustParse("AL-P-NA12877-N-03098121-TD1-TT1").Capture()
	assert.True(t, n.IsNormal())
	assert.False(t, n.IsCancer())
	assert.True(t, MustParse("AL-P-NA12877-T-03098849-TD1-TT1").Capture().IsCancer())
}

func TestKitNames(t *testing.T) {
	name, err := PrepKitName("BN")
	require.NoError(t, err)
	expect.EQ(t, name, "BIOO_NEXTFLEX")

	name, err = CaptureKitName("CM")
	require.NoError(t, err)
	expect.EQ(t, name, "monitor")

	name, err = CaptureKitName("WG")
	require.NoError(t, err)
	expect.EQ(t, name, "lowpass_wgs")

	_, err = PrepKitName("XX")
	require.Error(t, err)
	assert.True(t, errors.Is(errors.NotExist, err))

	_, err = CaptureKitName("CQ")
	require.Error(t, err)
	assert.True(t, errors.Is(errors.NotExist, err))
	assert.Contains(t, err.Error(), `did you mean "CB"?`)
}
