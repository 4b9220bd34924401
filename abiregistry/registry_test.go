package abiregistry

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mev-inspect-go/mevinspect/trace"
)

func TestNewLoadsAllProtocolFragments(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)
	assert.NotEmpty(t, reg.functions)
	assert.NotEmpty(t, reg.events)
}

func TestLookupResolvesTransferSelector(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	var sel [4]byte
	copy(sel[:], crypto.Keccak256([]byte("transfer(address,uint256)"))[:4])

	entry, ok := reg.Lookup(sel)
	require.True(t, ok)
	assert.Equal(t, "transfer", entry.Method.Name)
}

func TestLookupEventResolvesSwapTopic(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	topic := crypto.Keccak256Hash([]byte("Swap(address,uint256,uint256,uint256,uint256,address)"))
	entry, ok := reg.LookupEvent(topic)
	require.True(t, ok)
	assert.Equal(t, trace.Uniswap, entry.Protocol)
	assert.Equal(t, "Swap", entry.Event.Name)
}

func TestLookupUnknownSelectorReportsNotFound(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	_, ok := reg.Lookup([4]byte{0xde, 0xad, 0xbe, 0xef})
	assert.False(t, ok)
}

func TestDecodeRejectsShortInput(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	var sel [4]byte
	copy(sel[:], crypto.Keccak256([]byte("transfer(address,uint256)"))[:4])
	entry, ok := reg.Lookup(sel)
	require.True(t, ok)

	_, err = Decode(entry.Method, []byte{0x01, 0x02})
	assert.ErrorIs(t, err, ErrDecodeFailed)
}
