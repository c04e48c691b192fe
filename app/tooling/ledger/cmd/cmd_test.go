package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Commands(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/v1/transactions/new":
			json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"message":"Transaction will be added to Block 3","index":3}`))

		case "/v1/nodes/list":
			w.Write([]byte(`{"nodes":["10.0.0.5:5000"]}`))

		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
		}
	}))
	defer srv.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)

	rootCmd.SetArgs([]string{"send", "--url", srv.URL, "--sender", "A", "--recipient", "B", "--amount", "2.5"})
	require.NoError(t, rootCmd.Execute())
	require.Equal(t, "Transaction will be added to Block 3\n", out.String())
	require.Equal(t, map[string]any{"sender": "A", "recipient": "B", "amount": 2.5}, got)

	out.Reset()
	rootCmd.SetArgs([]string{"peers", "--url", srv.URL})
	require.NoError(t, rootCmd.Execute())
	require.True(t, strings.Contains(out.String(), "10.0.0.5:5000"), out.String())

	out.Reset()
	rootCmd.SetArgs([]string{"mine", "--url", srv.URL})
	require.Error(t, rootCmd.Execute())
}
