package worker

// Sync runs a consensus round against the known peers, replacing the local
// chain when a peer holds a longer valid chain.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	if len(w.state.RetrieveKnownPeers()) == 0 {
		w.evHandler("worker: sync: no known peers")
		return
	}

	replaced, err := w.state.ResolveConflicts(w.ctx)
	if err != nil {
		w.evHandler("worker: sync: ERROR: %s", err)
		return
	}

	w.evHandler("worker: sync: replaced[%v]: length[%d]", replaced, w.state.QueryChainLength())
}
