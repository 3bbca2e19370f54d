// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package checkpoints exposes the permissionless timeline maintenance calls.
package checkpoints

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/escrownet/vepower/api/restutil"
	"github.com/escrownet/vepower/staking"
	"github.com/escrownet/vepower/staking/power"
	"github.com/escrownet/vepower/vepower"
)

type Checkpoints struct {
	engine *staking.Engine
}

func New(engine *staking.Engine) *Checkpoints {
	return &Checkpoints{engine}
}

// AdvanceRequest asks to materialize a timeline up to an elapsed epoch.
type AdvanceRequest struct {
	Epoch vepower.Epoch `json:"epoch"`
}

// AdvanceResult reports the checkpoint reached.
type AdvanceResult struct {
	Epoch vepower.Epoch `json:"epoch"`
	Index uint64        `json:"index"`
}

func (c *Checkpoints) handleAdvanceGlobal(w http.ResponseWriter, req *http.Request) error {
	var advReq AdvanceRequest
	if err := restutil.ParseJSON(req.Body, &advReq); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	cp, err := c.engine.AdvanceGlobalCheckpoint(advReq.Epoch)
	if err != nil {
		return convertError(err)
	}
	return restutil.WriteJSON(w, &AdvanceResult{Epoch: cp.Epoch, Index: cp.Index})
}

func (c *Checkpoints) handleAdvanceStaker(w http.ResponseWriter, req *http.Request) error {
	staker, err := vepower.ParseAddress(mux.Vars(req)["staker"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "staker"))
	}
	var advReq AdvanceRequest
	if err := restutil.ParseJSON(req.Body, &advReq); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	cp, err := c.engine.AdvanceCheckpoint(*staker, advReq.Epoch)
	if err != nil {
		return convertError(err)
	}
	return restutil.WriteJSON(w, &AdvanceResult{Epoch: cp.Epoch, Index: cp.Index})
}

func convertError(err error) error {
	if errors.Is(err, power.ErrNotYetElapsed) || errors.Is(err, power.ErrAlreadyCalculated) {
		return restutil.Conflict(err)
	}
	return err
}

func (c *Checkpoints) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/total").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(c.handleAdvanceGlobal))
	sub.Path("/{staker}").Methods(http.MethodPost).HandlerFunc(restutil.WrapHandlerFunc(c.handleAdvanceStaker))
}
