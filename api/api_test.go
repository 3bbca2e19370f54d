// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escrownet/vepower/api"
	"github.com/escrownet/vepower/api/checkpoints"
	"github.com/escrownet/vepower/api/power"
	"github.com/escrownet/vepower/api/stakes"
	"github.com/escrownet/vepower/lvldb"
	"github.com/escrownet/vepower/staking"
	"github.com/escrownet/vepower/staking/schedule"
	"github.com/escrownet/vepower/vepower"
)

var alice = vepower.BytesToAddress([]byte("alice"))

func newTestServer(t *testing.T) (*httptest.Server, *staking.Engine, *staking.ManualClock) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sched, err := schedule.New(schedule.DefaultConfig())
	require.NoError(t, err)

	clock := staking.NewManualClock(420)
	registry := staking.NewRegistry()
	engine := staking.NewEngine(db, sched, clock, staking.NewMemVault(), registry)
	registry.SetTransferCallback(engine.TransferStake)

	ts := httptest.NewServer(api.New(engine, api.Options{AllowedOrigins: "*"}))
	t.Cleanup(ts.Close)
	return ts, engine, clock
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	return body, res.StatusCode
}

func httpPost(t *testing.T, url string, obj any) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	return body, res.StatusCode
}

func TestPowerEndpoints(t *testing.T) {
	ts, engine, _ := newTestServer(t)

	_, err := engine.CreateStake(alice, 1000, 13)
	require.NoError(t, err)

	body, code := httpGet(t, ts.URL+"/power/total?epoch=425")
	require.Equal(t, http.StatusOK, code)
	var total power.PowerResult
	require.NoError(t, json.Unmarshal(body, &total))
	assert.Equal(t, vepower.Epoch(425), total.Epoch)
	assert.Equal(t, int64(1000), total.Power)

	body, code = httpGet(t, ts.URL+"/power/"+alice.String()+"?epoch=434")
	require.Equal(t, http.StatusOK, code)
	var staker power.PowerResult
	require.NoError(t, json.Unmarshal(body, &staker))
	assert.Equal(t, int64(0), staker.Power)

	_, code = httpGet(t, ts.URL+"/power/"+alice.String())
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = httpGet(t, ts.URL+"/power/not-an-address?epoch=1")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestStakesEndpoints(t *testing.T) {
	ts, engine, _ := newTestServer(t)

	id, err := engine.CreateStake(alice, 1000, 13)
	require.NoError(t, err)

	body, code := httpGet(t, ts.URL+"/stakes/1")
	require.Equal(t, http.StatusOK, code)
	var stake stakes.Stake
	require.NoError(t, json.Unmarshal(body, &stake))
	assert.Equal(t, id, stake.ID)
	assert.Equal(t, alice.String(), stake.Owner)
	assert.Equal(t, uint64(1000), stake.Amount)
	assert.Equal(t, vepower.Epoch(421), stake.InitialEpoch)
	assert.Equal(t, vepower.Epoch(434), stake.EndEpoch)

	_, code = httpGet(t, ts.URL+"/stakes/99")
	assert.Equal(t, http.StatusNotFound, code)

	_, code = httpGet(t, ts.URL+"/stakes/abc")
	assert.Equal(t, http.StatusBadRequest, code)

	body, code = httpGet(t, ts.URL+"/stakes/owner/"+alice.String())
	require.Equal(t, http.StatusOK, code)
	var owned stakes.OwnerStakes
	require.NoError(t, json.Unmarshal(body, &owned))
	assert.Equal(t, []vepower.StakeID{id}, owned.StakeIDs)
	assert.Equal(t, uint64(1000), owned.StakedAmount)
}

func TestCheckpointEndpoints(t *testing.T) {
	ts, engine, clock := newTestServer(t)

	_, err := engine.CreateStake(alice, 1000, 13)
	require.NoError(t, err)
	clock.SetEpoch(500)

	body, code := httpPost(t, ts.URL+"/checkpoints/total", &checkpoints.AdvanceRequest{Epoch: 434})
	require.Equal(t, http.StatusOK, code)
	var result checkpoints.AdvanceResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, vepower.Epoch(434), result.Epoch)

	// already covered
	_, code = httpPost(t, ts.URL+"/checkpoints/total", &checkpoints.AdvanceRequest{Epoch: 434})
	assert.Equal(t, http.StatusConflict, code)

	// not yet elapsed
	_, code = httpPost(t, ts.URL+"/checkpoints/total", &checkpoints.AdvanceRequest{Epoch: 600})
	assert.Equal(t, http.StatusConflict, code)

	body, code = httpPost(t, ts.URL+"/checkpoints/"+alice.String(), &checkpoints.AdvanceRequest{Epoch: 421})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, vepower.Epoch(421), result.Epoch)
	assert.Equal(t, uint64(0), result.Index)

	_, code = httpPost(t, ts.URL+"/checkpoints/not-an-address", &checkpoints.AdvanceRequest{Epoch: 421})
	assert.Equal(t, http.StatusBadRequest, code)
}
