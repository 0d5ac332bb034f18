package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestDecodeString(t *testing.T) {
	hexStr := "f037308fa0ab18793ddab2f7b4dc20a9d5fc4dedd5bff12add852ecab9e4ca12"
	val, err := DigestDecodeString(hexStr)
	require.NoError(t, err)
	assert.Equal(t, hexStr, val.String())

	valPrefixed, err := DigestDecodeString("0x" + hexStr)
	require.NoError(t, err)
	assert.True(t, val.Equals(valPrefixed))

	_, err = DigestDecodeString(hexStr[1:])
	assert.Error(t, err)

	hexStr = "zzz7308fa0ab18793ddab2f7b4dc20a9d5fc4dedd5bff12add852ecab9e4ca12"
	_, err = DigestDecodeString(hexStr)
	assert.Error(t, err)
}

func TestDigestDecodeBytes(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04}
	_, err := DigestDecodeBytes(b)
	assert.Error(t, err)

	b = make([]byte, DigestSize)
	b[0] = 0xff
	val, err := DigestDecodeBytes(b)
	require.NoError(t, err)
	assert.Equal(t, b, val.Bytes())
}

func TestDigestCompare(t *testing.T) {
	var a, b Digest
	a[31] = 1
	assert.Equal(t, 1, a.Compare(b))
	assert.Equal(t, -1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
}

func TestDigestMarshalJSON(t *testing.T) {
	str := "f037308fa0ab18793ddab2f7b4dc20a9d5fc4dedd5bff12add852ecab9e4ca12"
	expected, err := DigestDecodeString(str)
	require.NoError(t, err)

	data, err := json.Marshal(expected)
	require.NoError(t, err)
	assert.Equal(t, `"`+str+`"`, string(data))

	var actual Digest
	require.NoError(t, json.Unmarshal(data, &actual))
	assert.Equal(t, expected, actual)
}
