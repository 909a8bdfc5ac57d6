package transfer

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const erc721ABI = `[{
	"type": "function",
	"name": "safeTransferFrom",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "from", "type": "address"},
		{"name": "to", "type": "address"},
		{"name": "tokenId", "type": "uint256"}
	],
	"outputs": []
}]`

var erc721 = mustParseABI(erc721ABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// SafeTransferFromSelector is the method id of safeTransferFrom(address,address,uint256)
func SafeTransferFromSelector() []byte {
	return erc721.Methods["safeTransferFrom"].ID
}

// EncodeSafeTransferFrom builds selector ‖ pad32(from) ‖ pad32(to) ‖ pad32(tokenID)
func EncodeSafeTransferFrom(from, to common.Address, tokenID *big.Int) ([]byte, error) {
	return erc721.Pack("safeTransferFrom", from, to, tokenID)
}
