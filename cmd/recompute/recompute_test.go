package recompute

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/model"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/repository"
)

type fakeRecomputeStore struct {
	positions []*model.Position
	saved     []string
}

func (s *fakeRecomputeStore) Search(ctx context.Context, options repository.PositionSearchOptions) ([]model.Position, error) {
	var out []model.Position
	for _, p := range s.positions {
		if options.Status != nil && p.Status != *options.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *fakeRecomputeStore) FindSuccessor(ctx context.Context, id string) (*model.Position, error) {
	for _, p := range s.positions {
		if p.RolledFrom != nil && *p.RolledFrom == id {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fakeRecomputeStore) Save(ctx context.Context, position *model.Position) error {
	s.saved = append(s.saved, position.ID)
	for i, p := range s.positions {
		if p.ID == position.ID {
			clone := *position
			s.positions[i] = &clone
		}
	}
	return nil
}

func (s *fakeRecomputeStore) find(id string) *model.Position {
	for _, p := range s.positions {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// fakeRecomputeLedger answers whole-ledger sums by position, and the
// scoped sums whenever a roll group is passed.
type fakeRecomputeLedger struct {
	sums       map[string]float64
	scopedSums map[string]float64
}

func (l *fakeRecomputeLedger) SumForPosition(ctx context.Context, positionID string, rollGroupID *string) (float64, error) {
	if rollGroupID != nil {
		return l.scopedSums[positionID], nil
	}
	return l.sums[positionID], nil
}

func fptr(v float64) *float64 { return &v }
func sptr(s string) *string   { return &s }

func TestStart_RepairsDriftedClosedPosition(t *testing.T) {
	store := &fakeRecomputeStore{positions: []*model.Position{{
		ID:          "pos-1",
		Symbol:      "XYZ",
		Status:      model.PositionStatusClosed,
		RealizedPnL: fptr(25),
		Legs:        []model.Leg{{}},
	}}}
	ledger := &fakeRecomputeLedger{sums: map[string]float64{"pos-1": 30}}

	rc := &Recompute{Positions: store, Ledger: ledger, Cfg: Config{DryRun: false, DriftTolerance: 0.005}}
	require.NoError(t, rc.Start())

	require.Equal(t, []string{"pos-1"}, store.saved)
	repaired := store.find("pos-1")
	require.NotNil(t, repaired.RealizedPnL)
	assert.Equal(t, 30.0, *repaired.RealizedPnL)
	require.NotNil(t, repaired.ClosedStatus)
	assert.Equal(t, model.ClosedStatusWin, *repaired.ClosedStatus)
}

func TestStart_DryRunReportsWithoutSaving(t *testing.T) {
	store := &fakeRecomputeStore{positions: []*model.Position{{
		ID:          "pos-1",
		Symbol:      "XYZ",
		Status:      model.PositionStatusClosed,
		RealizedPnL: fptr(25),
		Legs:        []model.Leg{{}},
	}}}
	ledger := &fakeRecomputeLedger{sums: map[string]float64{"pos-1": 30}}

	rc := &Recompute{Positions: store, Ledger: ledger, Cfg: Config{DryRun: true, DriftTolerance: 0.005}}
	require.NoError(t, rc.Start())

	assert.Empty(t, store.saved)
	assert.Equal(t, 25.0, *store.find("pos-1").RealizedPnL)
}

func TestStart_LeavesLeglessClosedPositionsAlone(t *testing.T) {
	// A closed stock position carries no legs and opened at zero net
	// premium, so its only ledger row is the exit proceeds: qty 10 at
	// 55.50 costs 555, sold at 600 the ledger holds +6000 while the
	// correct realized P&L is 5445. That gap is not drift.
	store := &fakeRecomputeStore{positions: []*model.Position{{
		ID:          "stock-1",
		Symbol:      "XYZ",
		Status:      model.PositionStatusClosed,
		TotalCost:   555,
		RealizedPnL: fptr(5445),
	}}}
	ledger := &fakeRecomputeLedger{sums: map[string]float64{"stock-1": 6000}}

	rc := &Recompute{Positions: store, Ledger: ledger, Cfg: Config{DryRun: false, DriftTolerance: 0.005}}
	require.NoError(t, rc.Start())

	assert.Empty(t, store.saved, "the exit proceeds must not overwrite realized P&L")
	assert.Equal(t, 5445.0, *store.find("stock-1").RealizedPnL)
}

func TestStart_RolledPositionUsesScopedSum(t *testing.T) {
	rollGroup := sptr("rg-1")
	store := &fakeRecomputeStore{positions: []*model.Position{
		{
			ID:          "roll-old",
			Symbol:      "XYZ",
			Status:      model.PositionStatusRolled,
			NetPremium:  60,
			RealizedPnL: fptr(-125),
			RollGroupID: rollGroup,
			Archived:    true,
			Legs:        []model.Leg{{}},
		},
		{
			ID:                    "roll-new",
			Symbol:                "XYZ",
			Status:                model.PositionStatusClosed,
			NetPremium:            180,
			RealizedPnL:           fptr(30),
			RollGroupID:           rollGroup,
			RolledFrom:            sptr("roll-old"),
			CumulativeRealizedPnL: -125,
			CumulativeNetPremium:  240,
			CumulativeBreakEven:   125,
			Legs:                  []model.Leg{{}},
		},
	}}
	ledger := &fakeRecomputeLedger{
		// The old side's whole ledger includes premium from before the
		// roll; only the scoped sum matches its stored realized P&L.
		sums:       map[string]float64{"roll-old": -65, "roll-new": 30},
		scopedSums: map[string]float64{"roll-old": -125},
	}

	rc := &Recompute{Positions: store, Ledger: ledger, Cfg: Config{DryRun: false, DriftTolerance: 0.005}}
	require.NoError(t, rc.Start())

	assert.Empty(t, store.saved)
	assert.Equal(t, -125.0, *store.find("roll-old").RealizedPnL)
}

func TestRecomputeChains_RepairsCumulativeFields(t *testing.T) {
	rollGroup := sptr("rg-1")
	store := &fakeRecomputeStore{positions: []*model.Position{
		{
			ID:          "roll-old",
			Symbol:      "XYZ",
			Status:      model.PositionStatusRolled,
			NetPremium:  60,
			RealizedPnL: fptr(-125),
			RollGroupID: rollGroup,
			Legs:        []model.Leg{{}},
		},
		{
			ID:          "roll-new",
			Symbol:      "XYZ",
			Status:      model.PositionStatusClosed,
			NetPremium:  180,
			RealizedPnL: fptr(30),
			RollGroupID: rollGroup,
			RolledFrom:  sptr("roll-old"),
			// Cumulative fields left at zero, as if never projected.
			Legs: []model.Leg{{}},
		},
	}}
	ledger := &fakeRecomputeLedger{
		sums:       map[string]float64{"roll-new": 30},
		scopedSums: map[string]float64{"roll-old": -125},
	}

	rc := &Recompute{Positions: store, Ledger: ledger, Cfg: Config{DryRun: false, DriftTolerance: 0.005}}
	require.NoError(t, rc.Start())

	require.Contains(t, store.saved, "roll-new")
	successor := store.find("roll-new")
	assert.Equal(t, -125.0, successor.CumulativeRealizedPnL)
	assert.Equal(t, 240.0, successor.CumulativeNetPremium)
	assert.Equal(t, 125.0, successor.CumulativeBreakEven)
}
