// Package viewer serves a page that shows the ledger events of a node as
// they happen.
package viewer

import (
	"context"
	_ "embed"
	"net/http"
)

//go:embed assets/index.html
var index []byte

// Handler serves the viewer page. The page connects back to the events
// websocket of the node it was served from.
func Handler(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(index)
	return err
}
