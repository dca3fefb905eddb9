package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testPubkey = "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	testAsset  = "a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1"
)

type recordedRequest struct {
	method, path string
	body         map[string]interface{}
}

type fakeDaemon struct {
	*httptest.Server
	lock     sync.Mutex
	requests []recordedRequest
}

func newFakeDaemon(t *testing.T, status int, reply string) *fakeDaemon {
	d := &fakeDaemon{}
	d.Server = httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			buf, _ := io.ReadAll(req.Body)
			var body map[string]interface{}
			if len(buf) > 0 {
				json.Unmarshal(buf, &body)
			}
			d.lock.Lock()
			d.requests = append(d.requests, recordedRequest{
				req.Method, req.URL.RequestURI(), body,
			})
			d.lock.Unlock()

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write([]byte(reply))
		},
	))
	t.Cleanup(d.Close)
	return d
}

func (d *fakeDaemon) lastRequest(t *testing.T) recordedRequest {
	d.lock.Lock()
	defer d.lock.Unlock()
	require.NotEmpty(t, d.requests)
	return d.requests[len(d.requests)-1]
}

func runCLICommand(t *testing.T, args ...string) (string, error) {
	app := newApp()
	out := &bytes.Buffer{}
	app.Writer = out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"escrow"}, args...))
	return out.String(), err
}

func withTestState(t *testing.T) {
	prev := statePath
	statePath = filepath.Join(t.TempDir(), "state.json")
	t.Cleanup(func() { statePath = prev })
}

func TestConfig(t *testing.T) {
	withTestState(t)

	_, err := runCLICommand(t, "config")
	require.Error(t, err)

	_, err = runCLICommand(
		t, "config", "init", "--rpcserver", "localhost:9000", "--pubkey", testPubkey,
	)
	require.NoError(t, err)

	_, err = runCLICommand(t, "config", "set", "rpcserver", "localhost:9945")
	require.NoError(t, err)

	out, err := runCLICommand(t, "config")
	require.NoError(t, err)
	require.Equal(
		t, "pubkey: "+testPubkey+"\nrpcserver: localhost:9945\n", out,
	)

	_, err = runCLICommand(t, "config", "set", "rpcserver")
	require.Error(t, err)
}

func TestGenKey(t *testing.T) {
	withTestState(t)

	out, err := runCLICommand(t, "genkey", "--save")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	pubkey := strings.TrimPrefix(lines[1], "public key: ")
	require.Len(t, pubkey, 64)

	state, err := getState()
	require.NoError(t, err)
	require.Equal(t, pubkey, state["pubkey"])
}

func TestEscrowCommands(t *testing.T) {
	withTestState(t)
	daemon := newFakeDaemon(t, http.StatusOK, `{}`)

	_, err := runCLICommand(
		t, "config", "init", "--rpcserver", daemon.URL, "--pubkey", testPubkey,
	)
	require.NoError(t, err)

	_, err = runCLICommand(
		t, "make", "--seed", "123", "--deposit", "10.5", "--receive", "0.25",
		"--deposit_asset", testAsset, "--receive_asset", testAsset,
		"--precision", "2",
	)
	require.NoError(t, err)
	req := daemon.lastRequest(t)
	require.Equal(t, http.MethodPost, req.method)
	require.Equal(t, "/v1/escrows", req.path)
	require.Equal(t, testPubkey, req.body["maker"])
	require.Equal(t, float64(123), req.body["seed"])
	require.Equal(t, float64(1050), req.body["deposit"])
	require.Equal(t, float64(25), req.body["receive"])

	_, err = runCLICommand(
		t, "make", "--seed", "1", "--deposit", "0.001", "--receive", "1",
		"--deposit_asset", testAsset, "--receive_asset", testAsset,
		"--precision", "2",
	)
	require.Error(t, err)

	_, err = runCLICommand(t, "take", "--address", testAsset)
	require.NoError(t, err)
	req = daemon.lastRequest(t)
	require.Equal(t, "/v1/escrows/"+testAsset+"/take", req.path)
	require.Equal(t, testPubkey, req.body["taker"])

	_, err = runCLICommand(t, "refund", "--address", testAsset, "--maker", "ff")
	require.NoError(t, err)
	req = daemon.lastRequest(t)
	require.Equal(t, "/v1/escrows/"+testAsset+"/refund", req.path)
	require.Equal(t, "ff", req.body["maker"])

	_, err = runCLICommand(t, "address", "--seed", "7")
	require.NoError(t, err)
	req = daemon.lastRequest(t)
	require.Equal(t, http.MethodGet, req.method)
	require.Equal(t, "/v1/address?maker="+testPubkey+"&seed=7", req.path)

	_, err = runCLICommand(t, "list", "--maker", testPubkey)
	require.NoError(t, err)
	require.Equal(t, "/v1/escrows?maker="+testPubkey, daemon.lastRequest(t).path)

	_, err = runCLICommand(t, "faucet", "--asset", testAsset, "--amount", "3")
	require.NoError(t, err)
	req = daemon.lastRequest(t)
	require.Equal(t, "/v1/faucet", req.path)
	require.Equal(t, testPubkey, req.body["address"])
	require.Equal(t, float64(3), req.body["amount"])

	_, err = runCLICommand(t, "webhook", "remove", "--id", "hook-id")
	require.NoError(t, err)
	req = daemon.lastRequest(t)
	require.Equal(t, http.MethodDelete, req.method)
	require.Equal(t, "/v1/webhooks/hook-id", req.path)
}

func TestFailingRequest(t *testing.T) {
	withTestState(t)
	daemon := newFakeDaemon(
		t, http.StatusNotFound, `{"error":"escrow not found","code":"not_found"}`,
	)

	_, err := runCLICommand(t, "config", "init", "--rpcserver", daemon.URL)
	require.NoError(t, err)

	_, err = runCLICommand(t, "info", "--address", testAsset)
	require.EqualError(t, err, "escrow not found (not_found)")

	// No default identity in state.
	_, err = runCLICommand(t, "take", "--address", testAsset)
	require.Error(t, err)
}
