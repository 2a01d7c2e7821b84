// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/polimec/polimec-node/api/utils"
	"github.com/polimec/polimec-node/funding"
)

// Info describes the running node.
type Info struct {
	Version       string `json:"version"`
	BlockInterval string `json:"blockInterval"`
}

type Block struct {
	Number uint32 `json:"number"`
}

type Node struct {
	backend utils.Caller
	info    Info
}

func New(backend utils.Caller, info Info) *Node {
	return &Node{
		backend,
		info,
	}
}

func (n *Node) handleNodeInfo(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, n.info)
}

func (n *Node) handleBlock(w http.ResponseWriter, req *http.Request) error {
	var block Block
	if err := n.backend.Call(req.Context(), func(f *funding.Funding) error {
		block.Number = f.Block()
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, block)
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/info").
		Methods(http.MethodGet).
		Name("node_get_info").
		HandlerFunc(utils.WrapHandlerFunc(n.handleNodeInfo))
	sub.Path("/block").
		Methods(http.MethodGet).
		Name("node_get_block").
		HandlerFunc(utils.WrapHandlerFunc(n.handleBlock))
}
