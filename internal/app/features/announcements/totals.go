// internal/app/features/announcements/totals.go
package announcements

import (
	"context"

	"github.com/corkboardhq/corkboard/internal/app/system/result"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func totalsKey(groupID primitive.ObjectID) string {
	return "votetotals-" + groupID.Hex()
}

func (h *Handler) totalsUnit(groupID primitive.ObjectID) func(ctx context.Context) result.Result[VoteTotals] {
	return func(ctx context.Context) result.Result[VoteTotals] {
		totals, err := h.Votes.GroupTotals(ctx, groupID)
		if err != nil {
			return result.Wrap[VoteTotals](err)
		}
		return result.Ok(VoteTotals(totals))
	}
}

// loadTotals refreshes and reads the group's vote tallies through the
// action cache. When the aggregation fails, the previous tallies stay
// readable, so a board page degrades to stale counts instead of an error.
func (h *Handler) loadTotals(ctx context.Context, groupID primitive.ObjectID) VoteTotals {
	key := totalsKey(groupID)
	h.Totals.Execute(ctx, key, h.totalsUnit(groupID))

	st := h.Totals.Read(key)
	if st.Data == nil {
		return VoteTotals{}
	}
	return *st.Data
}

// refreshTotalsAsync re-runs the tally off the request path after a vote
// or withdrawal. The request's deadline does not apply.
func (h *Handler) refreshTotalsAsync(groupID primitive.ObjectID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
		defer cancel()
		h.Totals.Execute(ctx, totalsKey(groupID), h.totalsUnit(groupID))
	}()
}
