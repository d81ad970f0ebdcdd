package netlist

import (
	"errors"
	"fmt"
)

// ErrDisconnected indicates nodes that no chain of branches joins to the
// reference node. Such a network has no spanning tree.
var ErrDisconnected = errors.New("netlist: network is not connected")

// walker is a breadth-first traversal of the undirected branch graph.
type walker struct {
	adj     map[string][]string
	queue   []string
	visited map[string]bool
	order   []string
}

func newWalker(branches []Branch) *walker {
	adj := make(map[string][]string)
	for _, b := range branches {
		adj[b.From] = append(adj[b.From], b.To)
		adj[b.To] = append(adj[b.To], b.From)
	}
	return &walker{
		adj:     adj,
		queue:   make([]string, 0, len(adj)),
		visited: make(map[string]bool, len(adj)),
	}
}

func (w *walker) enqueue(id string) {
	w.visited[id] = true
	w.queue = append(w.queue, id)
}

func (w *walker) loop() {
	for len(w.queue) > 0 {
		id := w.queue[0]
		w.queue = w.queue[1:]
		w.order = append(w.order, id)
		for _, nbr := range w.adj[id] {
			if !w.visited[nbr] {
				w.enqueue(nbr)
			}
		}
	}
}

func (nl *Netlist) walk() *walker {
	w := newWalker(nl.Branches)
	w.enqueue(nl.Reference)
	w.loop()

	return w
}

// Reachable returns the nodes reachable from the reference node in
// breadth-first order, the reference first.
func (nl *Netlist) Reachable() []string {
	return nl.walk().order
}

// checkConnected reports every node not reachable from the reference node.
func (nl *Netlist) checkConnected() error {
	w := nl.walk()
	var stranded []string
	for _, v := range nl.Nodes() {
		if !w.visited[v] {
			stranded = append(stranded, v)
		}
	}
	if len(stranded) > 0 {
		return fmt.Errorf("nodes %q unreachable from reference %q: %w", stranded, nl.Reference, ErrDisconnected)
	}

	return nil
}
