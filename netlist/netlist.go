// Package netlist builds reduced incidence matrices from branch lists.
//
// A netlist document names each branch by its two end nodes:
//
//	reference: "0"
//	branches:
//	  - {name: R1, from: "1", to: "0"}
//	  - {name: R2, from: "1", to: "2"}
//	  - {name: V1, from: "2", to: "0"}
//
// Rows follow the order in which nodes first appear (from, then to, branch by
// branch), with the reference node omitted. Columns follow branch order. A
// branch contributes +1 at its from-node row and −1 at its to-node row.
//
// YAML is parsed with gopkg.in/yaml.v3, so JSON documents are accepted too.
package netlist

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/nettopo/matrix"
)

// DefaultReference is the reference node used when a document omits one.
const DefaultReference = "0"

var (
	// ErrNoBranches indicates a document without branches.
	ErrNoBranches = errors.New("netlist: no branches")

	// ErrMissingEndpoint indicates a branch with an empty from or to node.
	ErrMissingEndpoint = errors.New("netlist: branch endpoint missing")

	// ErrSelfLoop indicates a branch whose endpoints coincide; its incidence column would be zero.
	ErrSelfLoop = errors.New("netlist: self-loop branch")

	// ErrDuplicateBranch indicates two branches with the same name.
	ErrDuplicateBranch = errors.New("netlist: duplicate branch name")

	// ErrUnknownReference indicates that the reference node is not an endpoint of any branch.
	ErrUnknownReference = errors.New("netlist: reference node not found")
)

// Branch is one network element between two nodes.
type Branch struct {
	Name string `yaml:"name" json:"name"`
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// Netlist is a parsed branch list.
type Netlist struct {
	Reference string   `yaml:"reference" json:"reference"`
	Branches  []Branch `yaml:"branches" json:"branches"`
}

// Parse decodes a YAML or JSON netlist and validates it.
// Unnamed branches are named "b<k>" after their 1-based position.
func Parse(r io.Reader) (*Netlist, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("netlist: read: %w", err)
	}

	var nl Netlist
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err = dec.Decode(&nl); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("netlist: decode: %w", err)
	}
	if nl.Reference == "" {
		nl.Reference = DefaultReference
	}
	for i := range nl.Branches {
		if nl.Branches[i].Name == "" {
			nl.Branches[i].Name = fmt.Sprintf("b%d", i+1)
		}
	}
	if err = nl.Validate(); err != nil {
		return nil, err
	}

	return &nl, nil
}

// Validate checks branch endpoints, names, the reference node and connectivity.
func (nl *Netlist) Validate() error {
	if len(nl.Branches) == 0 {
		return ErrNoBranches
	}
	names := make(map[string]int, len(nl.Branches))
	var refSeen bool
	for i, b := range nl.Branches {
		if b.From == "" || b.To == "" {
			return fmt.Errorf("branch %d (%s): %w", i+1, b.Name, ErrMissingEndpoint)
		}
		if b.From == b.To {
			return fmt.Errorf("branch %d (%s) at node %q: %w", i+1, b.Name, b.From, ErrSelfLoop)
		}
		if prev, ok := names[b.Name]; ok {
			return fmt.Errorf("branch %d and %d named %q: %w", prev+1, i+1, b.Name, ErrDuplicateBranch)
		}
		names[b.Name] = i
		if b.From == nl.Reference || b.To == nl.Reference {
			refSeen = true
		}
	}
	if !refSeen {
		return fmt.Errorf("reference %q: %w", nl.Reference, ErrUnknownReference)
	}

	return nl.checkConnected()
}

// Nodes returns the non-reference nodes in first-appearance order; this is
// the row order of Incidence.
func (nl *Netlist) Nodes() []string {
	seen := map[string]bool{nl.Reference: true}
	var nodes []string
	for _, b := range nl.Branches {
		for _, v := range [2]string{b.From, b.To} {
			if !seen[v] {
				seen[v] = true
				nodes = append(nodes, v)
			}
		}
	}

	return nodes
}

// Incidence builds the reduced incidence matrix (nodes × branches).
//
// Every branch has two distinct endpoints, so a valid netlist always has at
// least one non-reference node.
func (nl *Netlist) Incidence() (*matrix.Dense, error) {
	if err := nl.Validate(); err != nil {
		return nil, err
	}
	nodes := nl.Nodes()
	row := make(map[string]int, len(nodes))
	for i, v := range nodes {
		row[v] = i
	}

	a, err := matrix.NewDense(len(nodes), len(nl.Branches))
	if err != nil {
		return nil, fmt.Errorf("netlist: %w", err)
	}
	for j, b := range nl.Branches {
		if i, ok := row[b.From]; ok {
			if err = a.Set(i, j, 1); err != nil {
				return nil, fmt.Errorf("netlist: %w", err)
			}
		}
		if i, ok := row[b.To]; ok {
			if err = a.Set(i, j, -1); err != nil {
				return nil, fmt.Errorf("netlist: %w", err)
			}
		}
	}

	return a, nil
}
