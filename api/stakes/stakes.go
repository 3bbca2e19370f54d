// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/escrownet/vepower/api/restutil"
	"github.com/escrownet/vepower/staking"
	"github.com/escrownet/vepower/vepower"
)

type Stakes struct {
	engine *staking.Engine
}

func New(engine *staking.Engine) *Stakes {
	return &Stakes{engine}
}

func (s *Stakes) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	stake, err := s.engine.GetStake(vepower.StakeID(id))
	if err != nil {
		if errors.Is(err, staking.ErrStakeNotFound) {
			return restutil.NotFound(err)
		}
		return err
	}
	return restutil.WriteJSON(w, convertStake(vepower.StakeID(id), stake))
}

func (s *Stakes) handleGetOwner(w http.ResponseWriter, req *http.Request) error {
	owner, err := vepower.ParseAddress(mux.Vars(req)["owner"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "owner"))
	}
	ids, err := s.engine.StakeIDs(*owner)
	if err != nil {
		return err
	}
	amount, err := s.engine.StakedAmount(*owner)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &OwnerStakes{
		Owner:        owner.String(),
		StakeIDs:     ids,
		StakedAmount: amount,
	})
}

func (s *Stakes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/owner/{owner}").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(s.handleGetOwner))
	sub.Path("/{id}").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStake))
}
