package httpinterface

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/application"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

const maxRequestBodySize = 1 << 16

type handler struct {
	escrowSvc application.EscrowService
	ledgerSvc application.LedgerService
	pubsubSvc application.PubSubService
}

func (h *handler) makeEscrow(w http.ResponseWriter, req *http.Request) {
	var body makeEscrowRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(w, err)
		return
	}
	maker, err := parsePubkey("maker", body.Maker)
	if err != nil {
		writeError(w, err)
		return
	}
	depositAsset, err := parsePubkey("deposit_asset", body.DepositAsset)
	if err != nil {
		writeError(w, err)
		return
	}
	receiveAsset, err := parsePubkey("receive_asset", body.ReceiveAsset)
	if err != nil {
		writeError(w, err)
		return
	}

	escrow, err := h.escrowSvc.MakeEscrow(req.Context(), maker, domain.MakeArgs{
		Seed:    body.Seed,
		Deposit: body.Deposit,
		Receive: body.Receive,
		AssetA:  depositAsset,
		AssetB:  receiveAsset,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEscrowReply(*escrow))
}

func (h *handler) listEscrows(w http.ResponseWriter, req *http.Request) {
	var maker domain.Pubkey
	if str := req.URL.Query().Get("maker"); str != "" {
		var err error
		if maker, err = parsePubkey("maker", str); err != nil {
			writeError(w, err)
			return
		}
	}

	escrows, err := h.escrowSvc.ListEscrows(req.Context(), maker)
	if err != nil {
		writeError(w, err)
		return
	}
	reply := listEscrowsReply{Escrows: make([]escrowReply, 0, len(escrows))}
	for _, escrow := range escrows {
		reply.Escrows = append(reply.Escrows, toEscrowReply(escrow))
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *handler) getEscrow(w http.ResponseWriter, req *http.Request) {
	address, err := parsePubkey("address", mux.Vars(req)["address"])
	if err != nil {
		writeError(w, err)
		return
	}
	escrow, err := h.escrowSvc.GetEscrow(req.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEscrowReply(*escrow))
}

func (h *handler) takeEscrow(w http.ResponseWriter, req *http.Request) {
	address, err := parsePubkey("address", mux.Vars(req)["address"])
	if err != nil {
		writeError(w, err)
		return
	}
	var body takeEscrowRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(w, err)
		return
	}
	taker, err := parsePubkey("taker", body.Taker)
	if err != nil {
		writeError(w, err)
		return
	}

	settlement, err := h.escrowSvc.TakeEscrow(req.Context(), taker, address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementReply(*settlement))
}

func (h *handler) refundEscrow(w http.ResponseWriter, req *http.Request) {
	address, err := parsePubkey("address", mux.Vars(req)["address"])
	if err != nil {
		writeError(w, err)
		return
	}
	var body refundEscrowRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(w, err)
		return
	}
	maker, err := parsePubkey("maker", body.Maker)
	if err != nil {
		writeError(w, err)
		return
	}

	settlement, err := h.escrowSvc.RefundEscrow(req.Context(), maker, address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementReply(*settlement))
}

func (h *handler) deriveAddress(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()
	maker, err := parsePubkey("maker", query.Get("maker"))
	if err != nil {
		writeError(w, err)
		return
	}
	seed, err := strconv.ParseUint(query.Get("seed"), 10, 64)
	if err != nil {
		writeError(w, ErrInvalidSeed)
		return
	}

	addresses, err := h.escrowSvc.DeriveEscrowAddress(req.Context(), maker, seed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addressReply{
		Escrow: addresses.Escrow.String(),
		Vault:  addresses.Vault.String(),
	})
}

func (h *handler) getBalances(w http.ResponseWriter, req *http.Request) {
	owner, err := parsePubkey("owner", mux.Vars(req)["owner"])
	if err != nil {
		writeError(w, err)
		return
	}

	var balances []domain.Balance
	if str := req.URL.Query().Get("asset"); str != "" {
		asset, err := parsePubkey("asset", str)
		if err != nil {
			writeError(w, err)
			return
		}
		amount, err := h.ledgerSvc.GetBalance(req.Context(), owner, asset)
		if err != nil {
			writeError(w, err)
			return
		}
		balances = []domain.Balance{{Owner: owner, Asset: asset, Amount: amount}}
	} else {
		if balances, err = h.ledgerSvc.GetBalances(req.Context(), owner); err != nil {
			writeError(w, err)
			return
		}
	}

	reply := balancesReply{
		Owner:    owner.String(),
		Balances: make([]balanceInfo, 0, len(balances)),
	}
	for _, b := range balances {
		reply.Balances = append(reply.Balances, balanceInfo{
			Asset:  b.Asset.String(),
			Amount: b.Amount,
		})
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *handler) faucet(w http.ResponseWriter, req *http.Request) {
	var body faucetRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(w, err)
		return
	}
	to, err := parsePubkey("address", body.Address)
	if err != nil {
		writeError(w, err)
		return
	}
	asset, err := parsePubkey("asset", body.Asset)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.ledgerSvc.Mint(req.Context(), to, asset, body.Amount); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) addWebhook(w http.ResponseWriter, req *http.Request) {
	var body addWebhookRequest
	if err := decodeBody(req, &body); err != nil {
		writeError(w, err)
		return
	}
	id, err := h.pubsubSvc.AddWebhook(
		req.Context(), body.Event, body.Endpoint, body.Secret,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addWebhookReply{id})
}

func (h *handler) listWebhooks(w http.ResponseWriter, req *http.Request) {
	hooks, err := h.pubsubSvc.ListWebhooks(
		req.Context(), req.URL.Query().Get("event"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"webhooks": hooks})
}

func (h *handler) removeWebhook(w http.ResponseWriter, req *http.Request) {
	if err := h.pubsubSvc.RemoveWebhook(
		req.Context(), mux.Vars(req)["id"],
	); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(req *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, req.Body, maxRequestBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequestBody, err)
	}
	return nil
}

func parsePubkey(name, str string) (domain.Pubkey, error) {
	pk, err := domain.NewPubkeyFromString(str)
	if err != nil {
		return domain.Pubkey{}, fmt.Errorf("%s: %w", name, err)
	}
	return pk, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("http: failed to write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("http: internal error")
		msg = "internal error"
	}
	writeJSON(w, status, errorReply{Error: msg, Code: code})
}
