package httpinterface

import (
	"time"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

type makeEscrowRequest struct {
	Maker        string `json:"maker"`
	Seed         uint64 `json:"seed"`
	Deposit      uint64 `json:"deposit"`
	Receive      uint64 `json:"receive"`
	DepositAsset string `json:"deposit_asset"`
	ReceiveAsset string `json:"receive_asset"`
}

type takeEscrowRequest struct {
	Taker string `json:"taker"`
}

type refundEscrowRequest struct {
	Maker string `json:"maker"`
}

type faucetRequest struct {
	Address string `json:"address"`
	Asset   string `json:"asset"`
	Amount  uint64 `json:"amount"`
}

type addWebhookRequest struct {
	Event    string `json:"event"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret,omitempty"`
}

type addWebhookReply struct {
	Id string `json:"id"`
}

type escrowInfo struct {
	Address      string `json:"address"`
	Seed         uint64 `json:"seed"`
	Maker        string `json:"maker"`
	DepositAsset string `json:"deposit_asset"`
	ReceiveAsset string `json:"receive_asset"`
	Receive      uint64 `json:"receive"`
	CreatedAt    string `json:"created_at"`
	Bump         uint8  `json:"bump"`
}

type escrowReply struct {
	escrowInfo
	Vault   string `json:"vault"`
	Deposit uint64 `json:"deposit"`
}

type listEscrowsReply struct {
	Escrows []escrowReply `json:"escrows"`
}

type settlementReply struct {
	Escrow                 escrowInfo `json:"escrow"`
	Counterparty           string     `json:"counterparty"`
	AmountReleased         uint64     `json:"amount_released"`
	StorageDepositReturned uint64     `json:"storage_deposit_returned"`
}

type addressReply struct {
	Escrow string `json:"escrow"`
	Vault  string `json:"vault"`
}

type balanceInfo struct {
	Asset  string `json:"asset"`
	Amount uint64 `json:"amount"`
}

type balancesReply struct {
	Owner    string        `json:"owner"`
	Balances []balanceInfo `json:"balances"`
}

type errorReply struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func toEscrowInfo(address domain.Pubkey, escrow domain.Escrow) escrowInfo {
	return escrowInfo{
		Address:      address.String(),
		Seed:         escrow.Seed,
		Maker:        escrow.Maker.String(),
		DepositAsset: escrow.AssetA.String(),
		ReceiveAsset: escrow.AssetB.String(),
		Receive:      escrow.Receive,
		CreatedAt:    time.Unix(escrow.CreatedAt, 0).UTC().Format(time.RFC3339),
		Bump:         escrow.Bump,
	}
}

func toEscrowReply(escrow domain.EscrowHandle) escrowReply {
	return escrowReply{
		escrowInfo: toEscrowInfo(escrow.Address, escrow.Escrow),
		Vault:      escrow.Vault.Address.String(),
		Deposit:    escrow.Deposit,
	}
}

func toSettlementReply(settlement domain.Settlement) settlementReply {
	return settlementReply{
		Escrow:                 toEscrowInfo(settlement.Address, settlement.Escrow),
		Counterparty:           settlement.Counterparty.String(),
		AmountReleased:         settlement.Deposit,
		StorageDepositReturned: settlement.StorageDeposit,
	}
}
