package httpinterface

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/application"
	streampubsub "github.com/tdex-network/tdex-escrow/internal/infrastructure/pubsub/stream"
)

func TestEventStreamRoute(t *testing.T) {
	hub := streampubsub.NewHub()
	cfg := &application.Config{
		DBType:       application.DBInMemory,
		ProgramID:    programID,
		EnableFaucet: true,
		EventStream:  hub,
	}
	require.NoError(t, cfg.Validate())

	httpSrv := httptest.NewServer(newRouter(ServiceOpts{
		EscrowSvc:   cfg.EscrowService(),
		LedgerSvc:   cfg.LedgerService(),
		PubSubSvc:   cfg.PubSubService(),
		EventStream: hub,
	}))
	t.Cleanup(func() {
		cfg.Close()
		httpSrv.Close()
	})
	srv := &testServer{httpSrv}

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") +
		"/v1/events?topic=" + application.EventEscrowOpened
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool {
		return hub.NumClients() == 1
	}, 2*time.Second, 10*time.Millisecond)

	maker := newTestIdentity(t)
	status, _ := srv.do(t, http.MethodPost, "/v1/faucet", faucetRequest{
		maker.String(), assetA.String(), 10,
	})
	require.Equal(t, http.StatusNoContent, status)

	var escrow escrowReply
	status, body := srv.do(t, http.MethodPost, "/v1/escrows", makeEscrowRequest{
		Maker:        maker.String(),
		Seed:         9,
		Deposit:      10,
		Receive:      1,
		DepositAsset: assetA.String(),
		ReceiveAsset: assetB.String(),
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	require.NoError(t, json.Unmarshal(body, &escrow))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Event  string `json:"event"`
		Escrow struct {
			Address string `json:"address"`
		} `json:"escrow"`
		Deposit uint64 `json:"deposit"`
	}
	require.NoError(t, json.Unmarshal(msg, &event))
	require.Equal(t, application.EventEscrowOpened, event.Event)
	require.Equal(t, escrow.Address, event.Escrow.Address)
	require.Equal(t, uint64(10), event.Deposit)
}
