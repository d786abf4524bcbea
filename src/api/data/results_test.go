package data

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openassembly/election-api/src/api/types"
)

func TestElectionResultsValidation(t *testing.T) {
	db := testDB(t)

	_, err := ElectionResults(db, "senate")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	// no active or closed election of this type yet
	_, err = ElectionResults(db, types.ElectionTypePresident)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestElectionResultsDraftIgnored(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	testElection(t, db, types.ElectionTypePresident, nil,
		now.Add(24*time.Hour), now.Add(48*time.Hour)) // draft

	_, err := ElectionResults(db, types.ElectionTypePresident)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestPresidentResults(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	election := testElection(t, db, types.ElectionTypePresident, nil,
		now.Add(-time.Hour), now.Add(time.Hour))

	runnerA := testUser(t, db, "runner-a@example.org", true)
	runnerB := testUser(t, db, "runner-b@example.org", true)
	candA, err := CreateCandidate(db, CreateCandidateInput{
		UserID: runnerA.ID, ElectionID: election.ID,
		CandidateType: types.ElectionTypePresident, Name: "Alice",
	})
	require.NoError(t, err)
	candB, err := CreateCandidate(db, CreateCandidateInput{
		UserID: runnerB.ID, ElectionID: election.ID,
		CandidateType: types.ElectionTypePresident, Name: "Bob",
	})
	require.NoError(t, err)

	// 2 ballots for Alice, 1 for Bob
	for i, target := range []uint64{candA.ID, candA.ID, candB.ID} {
		voter := testUser(t, db, fmt.Sprintf("voter-%d@example.org", i), true)
		_, err := CastVote(db, CastVoteInput{
			MemberID:     voter.ID,
			ElectionType: types.ElectionTypePresident,
			CandidateID:  target,
		}, now)
		require.NoError(t, err)
	}

	results, err := ElectionResults(db, types.ElectionTypePresident)
	require.NoError(t, err)
	assert.Equal(t, types.ElectionTypePresident, results.ElectionType)
	assert.Equal(t, election.ID, results.Election.ID)
	assert.Equal(t, int64(3), results.TotalVotes)
	require.Len(t, results.PresidentResults, 2)
	assert.Empty(t, results.BoardResults)

	// ranked by vote count, percentages of the grand total
	first := results.PresidentResults[0]
	assert.Equal(t, "Alice", first.CandidateName)
	assert.Equal(t, int64(2), first.TotalVotes)
	assert.InDelta(t, 66.67, first.Percentage, 0.001)

	second := results.PresidentResults[1]
	assert.Equal(t, "Bob", second.CandidateName)
	assert.Equal(t, int64(1), second.TotalVotes)
	assert.InDelta(t, 33.33, second.Percentage, 0.001)
}

func TestBoardResults(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_, members, election, candidate := boardFixture(t, db)

	_, err := CastVote(db, CastVoteInput{
		MemberID:     members[0].ID,
		ElectionType: types.ElectionTypeBoard,
		CandidateID:  candidate.ID,
		BoardChoice:  strptr(types.BoardChoiceYes),
	}, now)
	require.NoError(t, err)
	_, err = CastVote(db, CastVoteInput{
		MemberID:     members[1].ID,
		ElectionType: types.ElectionTypeBoard,
		CandidateID:  candidate.ID,
		BoardChoice:  strptr(types.BoardChoiceNo),
	}, now)
	require.NoError(t, err)

	results, err := ElectionResults(db, types.ElectionTypeBoard)
	require.NoError(t, err)
	assert.Equal(t, election.ID, results.Election.ID)
	assert.Equal(t, int64(2), results.TotalVotes)
	assert.Empty(t, results.PresidentResults)
	require.Len(t, results.BoardResults, 1)

	r := results.BoardResults[0]
	assert.Equal(t, candidate.ID, r.CandidateID)
	assert.Equal(t, int64(2), r.TotalVotes)
	assert.Equal(t, int64(1), r.YesVotes)
	assert.Equal(t, int64(1), r.NoVotes)
	assert.InDelta(t, 50.00, r.YesPercentage, 0.001)
	assert.InDelta(t, 50.00, r.NoPercentage, 0.001)
}

func TestElectionResultsNoVotes(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	election := testElection(t, db, types.ElectionTypePresident, nil,
		now.Add(-time.Hour), now.Add(time.Hour))

	results, err := ElectionResults(db, types.ElectionTypePresident)
	require.NoError(t, err)
	assert.Equal(t, election.ID, results.Election.ID)
	assert.Equal(t, int64(0), results.TotalVotes)
	assert.Empty(t, results.PresidentResults)
}

func TestElectionResultsAfterClose(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	election := testElection(t, db, types.ElectionTypePresident, nil,
		now.Add(-time.Hour), now.Add(time.Hour))
	runner := testUser(t, db, "runner@example.org", true)
	candidate, err := CreateCandidate(db, CreateCandidateInput{
		UserID: runner.ID, ElectionID: election.ID,
		CandidateType: types.ElectionTypePresident, Name: "Runner",
	})
	require.NoError(t, err)
	voter := testUser(t, db, "voter@example.org", true)
	_, err = CastVote(db, CastVoteInput{
		MemberID:     voter.ID,
		ElectionType: types.ElectionTypePresident,
		CandidateID:  candidate.ID,
	}, now)
	require.NoError(t, err)

	_, err = CloseElection(db, election.ID)
	require.NoError(t, err)

	results, err := ElectionResults(db, types.ElectionTypePresident)
	require.NoError(t, err)
	assert.Equal(t, types.ElectionStatusClosed, results.Election.Status)
	assert.Equal(t, int64(1), results.TotalVotes)
	require.Len(t, results.PresidentResults, 1)
	assert.InDelta(t, 100.00, results.PresidentResults[0].Percentage, 0.001)
}
