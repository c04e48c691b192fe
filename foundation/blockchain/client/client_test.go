package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/client"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/database"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/peer"
	"github.com/stretchr/testify/require"
)

func Test_QueryChain(t *testing.T) {
	chain := []database.Block{
		{Index: 0, Timestamp: 1700000000.5, Transactions: []database.Tx{}, Proof: 100, PreviousHash: "1"},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chain" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"chain": chain, "length": len(chain)})
	}))
	defer srv.Close()

	pr, err := peer.Parse(srv.URL)
	require.NoError(t, err)

	clt := client.New("", time.Second)

	got, err := clt.QueryChain(context.Background(), pr)
	require.NoError(t, err)
	require.Equal(t, 1, got.Length)
	require.Equal(t, chain[0].Hash(), got.Chain[0].Hash())
}

func Test_PeerErrors(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal Server Error"}`))
	}))
	defer broken.Close()

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"chain": "nope"`))
	}))
	defer garbage.Close()

	clt := client.New("", 100*time.Millisecond)

	for _, url := range []string{slow.URL, broken.URL, garbage.URL, "http://127.0.0.1:1"} {
		pr, err := peer.Parse(url)
		require.NoError(t, err)

		_, err = clt.QueryChain(context.Background(), pr)
		require.Error(t, err, url)

		var pe *client.PeerError
		require.True(t, errors.As(err, &pe), url)
		require.Equal(t, pr.Host, pe.Host)
	}
}

func Test_SubmitTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var tx database.Tx
		if err := json.NewDecoder(r.Body).Decode(&tx); err != nil || tx.Sender == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Missing values","fields":{"sender":"sender is a required field"}}`))
			return
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"Transaction will be added to Block 4","index":4}`))
	}))
	defer srv.Close()

	clt := client.New(srv.URL, time.Second)

	index, err := clt.SubmitTransaction(context.Background(), database.NewTx("A", "B", 1))
	require.NoError(t, err)
	require.Equal(t, uint64(4), index)

	_, err = clt.SubmitTransaction(context.Background(), database.NewTx("", "B", 1))
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "Missing values"), err.Error())
}
