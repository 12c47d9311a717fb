package recompute

// The ledger is the source of truth for realized P&L; the numeric fields
// stored on positions are a materialized projection. This command
// re-derives that projection from the ledger and reports (or repairs)
// any drift.

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/model"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/money"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/repository"
)

type positionStore interface {
	Search(ctx context.Context, options repository.PositionSearchOptions) ([]model.Position, error)
	FindSuccessor(ctx context.Context, id string) (*model.Position, error)
	Save(ctx context.Context, position *model.Position) error
}

type cashFlowLedger interface {
	SumForPosition(ctx context.Context, positionID string, rollGroupID *string) (float64, error)
}

type Recompute struct {
	Positions positionStore
	Ledger    cashFlowLedger
	Cfg       Config
}

// Start walks every settled position, re-derives realized P&L from the
// ledger and repairs drifted projections unless dry-run is on.
func (rc *Recompute) Start() error {
	ctx := context.Background()

	var drifted, checked int

	for _, status := range []string{model.PositionStatusClosed, model.PositionStatusRolled} {
		statusFilter := status
		positions, err := rc.Positions.Search(ctx, repository.PositionSearchOptions{Status: &statusFilter})
		if err != nil {
			return err
		}

		for i := range positions {
			position := &positions[i]

			// A legless position opened at zero net premium has no
			// opening ledger row, so its ledger sum is the exit
			// proceeds, not realized P&L. Nothing to re-derive.
			if position.Status == model.PositionStatusClosed && len(position.Legs) == 0 {
				continue
			}
			checked++

			// A rolled position's realized P&L is scoped to its roll
			// group; a closed one sums its whole ledger.
			var rollGroup *string
			if position.Status == model.PositionStatusRolled {
				rollGroup = position.RollGroupID
			}

			expected, err := rc.Ledger.SumForPosition(ctx, position.ID, rollGroup)
			if err != nil {
				return err
			}
			expected = money.RoundCents(expected)

			stored := 0.0
			if position.RealizedPnL != nil {
				stored = *position.RealizedPnL
			}

			if diff := expected - stored; diff > rc.Cfg.DriftTolerance || diff < -rc.Cfg.DriftTolerance {
				drifted++
				logger.WithFields(map[string]interface{}{
					"cmd":      "recompute",
					"id":       position.ID,
					"symbol":   position.Symbol,
					"status":   position.Status,
					"stored":   stored,
					"expected": expected,
				}).Warn("Realized P&L drifted from ledger")

				if !rc.Cfg.DryRun {
					closedStatus := model.DeriveClosedStatus(expected)
					position.RealizedPnL = &expected
					position.ClosedStatus = &closedStatus
					if err := rc.Positions.Save(ctx, position); err != nil {
						return err
					}
				}
			}
		}
	}

	if err := rc.recomputeChains(ctx); err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"cmd":     "recompute",
		"checked": checked,
		"drifted": drifted,
		"dry_run": rc.Cfg.DryRun,
	}).Info("Recompute finished")

	return nil
}

// recomputeChains re-derives the cumulative roll-chain fields, walking
// each chain from its root.
func (rc *Recompute) recomputeChains(ctx context.Context) error {

	rolled := model.PositionStatusRolled
	rolledPositions, err := rc.Positions.Search(ctx, repository.PositionSearchOptions{Status: &rolled})
	if err != nil {
		return err
	}

	for i := range rolledPositions {
		root := &rolledPositions[i]
		// Chains are walked from their root only.
		if root.RolledFrom != nil {
			continue
		}

		cumulativePnL := 0.0
		cumulativePremium := root.NetPremium
		current := root
		for {
			successor, err := rc.Positions.FindSuccessor(ctx, current.ID)
			if err != nil {
				return err
			}
			if successor == nil {
				break
			}

			if current.RealizedPnL != nil {
				cumulativePnL = money.RoundCents(cumulativePnL + *current.RealizedPnL)
			}
			cumulativePremium = money.RoundCents(cumulativePremium + successor.NetPremium)

			expectedBreakEven := money.RoundCents(abs(cumulativePnL))
			if successor.CumulativeRealizedPnL != cumulativePnL ||
				successor.CumulativeNetPremium != cumulativePremium ||
				successor.CumulativeBreakEven != expectedBreakEven {

				logger.WithFields(map[string]interface{}{
					"cmd":           "recompute",
					"id":            successor.ID,
					"expected_pnl":  cumulativePnL,
					"stored_pnl":    successor.CumulativeRealizedPnL,
					"roll_group_id": successor.RollGroupID,
				}).Warn("Cumulative roll-chain fields drifted")

				if !rc.Cfg.DryRun {
					successor.CumulativeRealizedPnL = cumulativePnL
					successor.CumulativeNetPremium = cumulativePremium
					successor.CumulativeBreakEven = expectedBreakEven
					if err := rc.Positions.Save(ctx, successor); err != nil {
						return err
					}
				}
			}

			current = successor
		}
	}

	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
