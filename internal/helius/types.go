package helius

// Raw Helius API shapes. Only the fields the extractor and portfolio
// pipeline dispatch on are mapped; everything else in the payload is
// ignored by encoding/json.

// Transaction is one enhanced transaction record from
// /v0/addresses/{address}/transactions.
type Transaction struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"` // Unix seconds
	BlockTime int64  `json:"blockTime"` // Unix seconds, fallback for Timestamp
	Slot      int64  `json:"slot"`

	Events         *TransactionEvents `json:"events,omitempty"`
	TokenTransfers []TokenTransfer    `json:"tokenTransfers,omitempty"`
}

// TransactionEvents carries the enhanced event annotations of a transaction.
type TransactionEvents struct {
	Swap []SwapAnnotation `json:"swap,omitempty"`
}

// SwapAnnotation is an explicit swap event with separate input/output legs.
type SwapAnnotation struct {
	TokenInputs  []SwapToken `json:"tokenInputs,omitempty"`
	TokenOutputs []SwapToken `json:"tokenOutputs,omitempty"`
}

// SwapToken is one leg of a swap annotation.
type SwapToken struct {
	Mint           string          `json:"mint"`
	TokenAmount    float64         `json:"tokenAmount,omitempty"` // normalized display amount
	RawTokenAmount *RawTokenAmount `json:"rawTokenAmount,omitempty"`
	Decimals       int32           `json:"decimals,omitempty"`
}

// RawTokenAmount is the smallest-unit amount descriptor.
type RawTokenAmount struct {
	TokenAmount string `json:"tokenAmount"` // numeric string
	Decimals    int32  `json:"decimals"`
}

// TokenTransfer is one entry of a transaction's flat transfer list.
type TokenTransfer struct {
	FromUserAccount string  `json:"fromUserAccount"`
	ToUserAccount   string  `json:"toUserAccount"`
	Mint            string  `json:"mint"`
	TokenAddress    string  `json:"tokenAddress"` // fallback asset id
	TokenAmount     float64 `json:"tokenAmount"`
	Amount          float64 `json:"amount"` // fallback amount
	Decimals        int32   `json:"decimals"`
}

// Asset is one DAS asset item from getAssetsByOwner.
type Asset struct {
	Interface string     `json:"interface"`
	ID        string     `json:"id"` // mint address
	TokenInfo *TokenInfo `json:"token_info,omitempty"`
}

// Asset interface constants.
const (
	InterfaceFungibleToken = "FungibleToken"
)

// TokenInfo holds fungible-token metadata and balance for an asset.
type TokenInfo struct {
	Symbol   string  `json:"symbol,omitempty"`
	Name     string  `json:"name,omitempty"`
	Decimals int32   `json:"decimals"`
	Balance  float64 `json:"balance"` // smallest units
}

// AssetPage is one page of getAssetsByOwner results.
type AssetPage struct {
	Total int     `json:"total"`
	Items []Asset `json:"items"`
}
