// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package power

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/escrownet/vepower/api/restutil"
	"github.com/escrownet/vepower/staking"
	"github.com/escrownet/vepower/vepower"
)

type Power struct {
	engine *staking.Engine
}

func New(engine *staking.Engine) *Power {
	return &Power{engine}
}

func (p *Power) handleGetTotal(w http.ResponseWriter, req *http.Request) error {
	epoch, err := parseEpoch(req.URL.Query().Get("epoch"))
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "epoch"))
	}
	total, err := p.engine.TotalPowerAt(epoch)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &PowerResult{Epoch: epoch, Power: int64(total)})
}

func (p *Power) handleGetStaker(w http.ResponseWriter, req *http.Request) error {
	staker, err := vepower.ParseAddress(mux.Vars(req)["staker"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "staker"))
	}
	epoch, err := parseEpoch(req.URL.Query().Get("epoch"))
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "epoch"))
	}
	pow, err := p.engine.StakerPower(*staker, epoch)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &PowerResult{Epoch: epoch, Power: int64(pow)})
}

func parseEpoch(s string) (vepower.Epoch, error) {
	if s == "" {
		return 0, errors.New("missing")
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return vepower.Epoch(n), nil
}

func (p *Power) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/total").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(p.handleGetTotal))
	sub.Path("/{staker}").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(p.handleGetStaker))
}
