package proof

import (
	"github.com/prophouse/govpower-sdk/encoding"
	"github.com/prophouse/govpower-sdk/starknet"
)

// ProveAccountCall builds the fact registry call that proves the account
// fields (and so the storage root) of the proven contract at the block.
func ProveAccountCall(factRegistry string, in *ProofInputs) starknet.Call {
	calldata := []string{
		encoding.Uint64ToFeltHex(in.AccountOptions),
		encoding.Uint64ToFeltHex(in.BlockNumber),
	}
	calldata = append(calldata, in.EthAddress.Strings()...)
	calldata = append(calldata, encodeNodes(in.AccountProofSizesBytes, in.AccountProofSizesWords, in.AccountProof)...)
	return starknet.Call{
		ContractAddress: factRegistry,
		Entrypoint:      "prove_account",
		Calldata:        calldata,
	}
}

// ProcessBlockCall builds the headers store call that processes a block
// header.
func ProcessBlockCall(headersStore string, in *ProcessBlockInputs) starknet.Call {
	calldata := []string{
		encoding.Uint64ToFeltHex(in.BlockOptions),
		encoding.Uint64ToFeltHex(in.BlockNumber),
		encoding.Uint64ToFeltHex(uint64(in.HeaderInts.BytesLength)),
		encoding.Uint64ToFeltHex(uint64(len(in.HeaderInts.Values))),
	}
	calldata = append(calldata, in.HeaderInts.Strings()...)
	return starknet.Call{
		ContractAddress: headersStore,
		Entrypoint:      "process_block",
		Calldata:        calldata,
	}
}

// StorageHashQuery reads the storage hash the fact registry has verified for
// account at block. A zero result means the account has not been proven.
func StorageHashQuery(factRegistry string, in *ProofInputs) starknet.Call {
	return starknet.Call{
		ContractAddress: factRegistry,
		Entrypoint:      "get_verified_account_storage_hash",
		Calldata:        []string{in.EthAddressFelt, encoding.Uint64ToFeltHex(in.BlockNumber)},
	}
}

// StateRootQuery reads the state root the headers store holds for block.
func StateRootQuery(headersStore string, block uint64) starknet.Call {
	return starknet.Call{
		ContractAddress: headersStore,
		Entrypoint:      "get_state_root",
		Calldata:        []string{encoding.Uint64ToFeltHex(block)},
	}
}
