package webserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openassembly/election-api/src/api/config"
	"github.com/openassembly/election-api/src/api/data"
)

// TestBoardElectionJourney drives a full board referendum through the HTTP
// surface: committee setup, election creation, candidacy, two ballots, and
// the tallied result.
func TestBoardElectionJourney(t *testing.T) {
	db := testDB(t)
	cfg := config.Config{
		JWTSecret:       string(testSecret),
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}
	r := New(cfg, db, nil)

	admin := testUser(t, db, "admin@example.org", data.RoleAdmin, "password123", true)
	member1 := testUser(t, db, "m1@example.org", data.RoleMember, "password123", true)
	member2 := testUser(t, db, "m2@example.org", data.RoleMember, "password123", true)
	adminTok := bearerFor(t, &admin)
	m1Tok := bearerFor(t, &member1)
	m2Tok := bearerFor(t, &member2)

	// members cannot create committees
	w := do(r, http.MethodPost, "/v1/committees",
		fmt.Sprintf(`{"name":"Finance","description":"d","members":[%d,%d]}`, member1.ID, member2.ID),
		m1Tok)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, "/v1/committees",
		fmt.Sprintf(`{"name":"Finance","description":"d","members":[%d,%d]}`, member1.ID, member2.ID),
		adminTok)
	require.Equal(t, http.StatusCreated, w.Code)
	var committeeResp struct {
		Committee struct {
			ID uint64 `json:"id"`
		} `json:"committee"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &committeeResp))

	now := time.Now()
	w = do(r, http.MethodPost, "/v1/elections", fmt.Sprintf(
		`{"electionType":"board","title":"Board 2026","startDate":%q,"endDate":%q,"committeeId":%d}`,
		now.Add(-time.Minute).Format(time.RFC3339),
		now.Add(time.Hour).Format(time.RFC3339),
		committeeResp.Committee.ID), adminTok)
	require.Equal(t, http.StatusCreated, w.Code)
	var electionResp struct {
		Election struct {
			ID     uint64 `json:"id"`
			Status string `json:"status"`
		} `json:"election"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &electionResp))
	assert.Equal(t, "active", electionResp.Election.Status)

	w = do(r, http.MethodPost, "/v1/candidates", fmt.Sprintf(
		`{"userId":%d,"electionId":%d,"candidateType":"board","name":"Candidate A","committeeId":%d}`,
		member1.ID, electionResp.Election.ID, committeeResp.Committee.ID), m1Tok)
	require.Equal(t, http.StatusCreated, w.Code)
	var candidateResp struct {
		Candidate struct {
			ID uint64 `json:"id"`
		} `json:"candidate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &candidateResp))

	ballot := func(choice string, candidateID uint64) string {
		return fmt.Sprintf(`{"electionType":"board","candidateId":%d,"boardChoice":%q}`,
			candidateID, choice)
	}

	w = do(r, http.MethodPost, "/v1/votes", ballot("yes", candidateResp.Candidate.ID), m1Tok)
	require.Equal(t, http.StatusCreated, w.Code)

	// the same member cannot vote twice on one candidate
	w = do(r, http.MethodPost, "/v1/votes", ballot("no", candidateResp.Candidate.ID), m1Tok)
	require.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/v1/votes", ballot("no", candidateResp.Candidate.ID), m2Tok)
	require.Equal(t, http.StatusCreated, w.Code)

	// results are public
	w = do(r, http.MethodGet, "/v1/votes/results/board", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var results data.Results
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Equal(t, int64(2), results.TotalVotes)
	require.Len(t, results.BoardResults, 1)
	assert.Equal(t, int64(1), results.BoardResults[0].YesVotes)
	assert.Equal(t, int64(1), results.BoardResults[0].NoVotes)
	assert.InDelta(t, 50.0, results.BoardResults[0].YesPercentage, 0.001)
	assert.InDelta(t, 50.0, results.BoardResults[0].NoPercentage, 0.001)

	// own ballots
	w = do(r, http.MethodGet, "/v1/votes/mine", "", m1Tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	// full ledger needs admin
	require.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/v1/votes", "", m1Tok).Code)
	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/v1/votes", "", adminTok).Code)
}

// TestPresidentElectionJourney covers the single-ballot president race over
// the HTTP surface.
func TestPresidentElectionJourney(t *testing.T) {
	db := testDB(t)
	cfg := config.Config{
		JWTSecret:       string(testSecret),
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}
	r := New(cfg, db, nil)

	admin := testUser(t, db, "admin@example.org", data.RoleAdmin, "password123", true)
	runner := testUser(t, db, "runner@example.org", data.RolePresidentCandidate, "password123", true)
	voter := testUser(t, db, "voter@example.org", data.RoleMember, "password123", true)
	adminTok := bearerFor(t, &admin)
	runnerTok := bearerFor(t, &runner)
	voterTok := bearerFor(t, &voter)

	now := time.Now()
	w := do(r, http.MethodPost, "/v1/elections", fmt.Sprintf(
		`{"electionType":"president","title":"President 2026","startDate":%q,"endDate":%q}`,
		now.Add(-time.Minute).Format(time.RFC3339),
		now.Add(time.Hour).Format(time.RFC3339)), adminTok)
	require.Equal(t, http.StatusCreated, w.Code)
	var electionResp struct {
		Election struct {
			ID uint64 `json:"id"`
		} `json:"election"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &electionResp))

	w = do(r, http.MethodPost, "/v1/candidates", fmt.Sprintf(
		`{"userId":%d,"electionId":%d,"candidateType":"president","name":"Runner"}`,
		runner.ID, electionResp.Election.ID), runnerTok)
	require.Equal(t, http.StatusCreated, w.Code)
	var candidateResp struct {
		Candidate struct {
			ID uint64 `json:"id"`
		} `json:"candidate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &candidateResp))

	vote := fmt.Sprintf(`{"electionType":"president","candidateId":%d}`, candidateResp.Candidate.ID)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/v1/votes", vote, voterTok).Code)

	// one ballot per member in the whole race
	require.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/v1/votes", vote, voterTok).Code)

	// anonymous voting is rejected before the engine is reached
	require.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/v1/votes", vote, "").Code)

	w = do(r, http.MethodGet, "/v1/votes/results/president", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var results data.Results
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results.PresidentResults, 1)
	assert.InDelta(t, 100.0, results.PresidentResults[0].Percentage, 0.001)
}
