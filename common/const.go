package common

import "math/big"

// NounsToken is the only checkpointing ERC721 the checkpoint strategy accepts.
const NounsToken = "0x9C8fF314C9Bc7F6e59A9d9225Fb22946427eDC03"

// Storage layout of the Nouns token (ERC721Checkpointable).
var (
	NounsCheckpointsSlot    = big.NewInt(0xc)
	NounsNumCheckpointsSlot = big.NewInt(0xd)
)

const (
	ChainIDMainnet = 1
	ChainIDGoerli  = 5
	ChainIDSepolia = 11155111
)
