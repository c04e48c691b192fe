// Package client provides support for talking to a node over its HTTP API.
// Nodes use it to query the chain of their peers and the operator tooling
// uses it to drive a node.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/database"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/peer"
	"github.com/go-resty/resty/v2"
)

// PeerError is returned when a node can't be reached or does not answer
// with a successful response.
type PeerError struct {
	Host string
	Err  error
}

// Error implements the error interface.
func (pe *PeerError) Error() string {
	return fmt.Sprintf("peer %s: %s", pe.Host, pe.Err)
}

// Unwrap provides support for errors.Is and errors.As.
func (pe *PeerError) Unwrap() error {
	return pe.Err
}

// =============================================================================

// Chain represents the chain a node reports.
type Chain struct {
	Length int              `json:"length"`
	Chain  []database.Block `json:"chain"`
}

// Mined represents the block sealed by a mine request.
type Mined struct {
	Message      string        `json:"message"`
	Index        uint64        `json:"index"`
	Transactions []database.Tx `json:"transactions"`
	Proof        uint64        `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
}

// Registered represents the result of registering nodes.
type Registered struct {
	Message    string   `json:"message"`
	TotalNodes []string `json:"total_nodes"`
	Failed     []string `json:"failed,omitempty"`
}

// Resolved represents the result of a consensus round.
type Resolved struct {
	Message  string           `json:"message"`
	Replaced bool             `json:"replaced"`
	Chain    []database.Block `json:"chain"`
}

// errorResponse is the form used by a node for failed requests.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// =============================================================================

// Client provides access to the API of a node.
type Client struct {
	http *resty.Client
}

// New constructs a client. The baseURL is used by the operator calls and
// can be empty when only peers are queried. Every request is bounded by
// the timeout.
func New(baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	if baseURL != "" {
		rc.SetBaseURL(baseURL)
	}

	return &Client{http: rc}
}

// QueryChain retrieves the chain reported by the peer at
// http://<host>/chain. The result is untrusted.
func (c *Client) QueryChain(ctx context.Context, pr peer.Peer) (Chain, error) {
	var chain Chain
	url := fmt.Sprintf("http://%s/chain", pr.Host)

	if err := c.send(ctx, http.MethodGet, url, nil, &chain); err != nil {
		return Chain{}, &PeerError{Host: pr.Host, Err: err}
	}

	return chain, nil
}

// SubmitTransaction adds a transaction to the node's pending pool and
// returns the index of the block it will join.
func (c *Client) SubmitTransaction(ctx context.Context, tx database.Tx) (uint64, error) {
	var resp struct {
		Message string `json:"message"`
		Index   uint64 `json:"index"`
	}

	if err := c.send(ctx, http.MethodPost, "/v1/transactions/new", tx, &resp); err != nil {
		return 0, err
	}

	return resp.Index, nil
}

// Mine asks the node to mine a new block.
func (c *Client) Mine(ctx context.Context) (Mined, error) {
	var mined Mined
	if err := c.send(ctx, http.MethodGet, "/v1/mine", nil, &mined); err != nil {
		return Mined{}, err
	}

	return mined, nil
}

// Chain returns the node's full chain.
func (c *Client) Chain(ctx context.Context) (Chain, error) {
	var chain Chain
	if err := c.send(ctx, http.MethodGet, "/v1/chain", nil, &chain); err != nil {
		return Chain{}, err
	}

	return chain, nil
}

// RegisterNodes registers the addresses as peers of the node.
func (c *Client) RegisterNodes(ctx context.Context, addresses []string) (Registered, error) {
	body := struct {
		Nodes []string `json:"nodes"`
	}{
		Nodes: addresses,
	}

	var reg Registered
	if err := c.send(ctx, http.MethodPost, "/v1/nodes/register", body, &reg); err != nil {
		return Registered{}, err
	}

	return reg, nil
}

// Peers returns the node's known peers.
func (c *Client) Peers(ctx context.Context) ([]string, error) {
	var resp struct {
		Nodes []string `json:"nodes"`
	}

	if err := c.send(ctx, http.MethodGet, "/v1/nodes/list", nil, &resp); err != nil {
		return nil, err
	}

	return resp.Nodes, nil
}

// Resolve asks the node to run a consensus round.
func (c *Client) Resolve(ctx context.Context) (Resolved, error) {
	var res Resolved
	if err := c.send(ctx, http.MethodGet, "/v1/nodes/resolve", nil, &res); err != nil {
		return Resolved{}, err
	}

	return res, nil
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func (c *Client) send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	var errResp errorResponse

	req := c.http.R().
		SetContext(ctx).
		SetError(&errResp)

	if dataSend != nil {
		req.SetBody(dataSend)
	}

	if dataRecv != nil {
		req.SetResult(dataRecv)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return err
	}

	if resp.IsError() {
		if errResp.Error != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode(), errResp.Error)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String())
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return errors.New(resp.Status())
	}

	return nil
}
