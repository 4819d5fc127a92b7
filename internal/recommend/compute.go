package recommend

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

type recipeTally struct {
	seen    map[uuid.UUID]struct{}
	owned   int
	missing []string
	blocked bool
}

// Compute scores every eligible recipe in snap for userID. Ties keep the
// order of snap.Recipes.
func Compute(userID uuid.UUID, snap Snapshot) Result {
	pantry := toSet(snap.Pantry)
	restricted := toSet(snap.Restricted)

	tallies := make(map[uuid.UUID]*recipeTally, len(snap.Recipes))
	for _, r := range snap.Recipes {
		tallies[r.ID] = &recipeTally{seen: make(map[uuid.UUID]struct{})}
	}

	var dropped int
	for _, req := range snap.Requirements {
		tally, ok := tallies[req.RecipeID]
		if !ok || req.IngredientID == uuid.Nil || req.IngredientName == "" {
			dropped++
			continue
		}
		if _, dup := tally.seen[req.IngredientID]; dup {
			continue
		}
		tally.seen[req.IngredientID] = struct{}{}

		if _, ok := restricted[req.IngredientID]; ok {
			tally.blocked = true
		}
		if _, ok := pantry[req.IngredientID]; ok {
			tally.owned++
		} else {
			tally.missing = append(tally.missing, req.IngredientName)
		}
	}

	recs := make([]Recommendation, 0, len(snap.Recipes))
	for _, r := range snap.Recipes {
		tally, ok := tallies[r.ID]
		if !ok {
			continue
		}
		// a recipe listed twice is scored once
		delete(tallies, r.ID)
		total := len(tally.seen)
		if total == 0 || tally.blocked {
			continue
		}
		missing := tally.missing
		if missing == nil {
			missing = []string{}
		}
		recs = append(recs, Recommendation{
			RecipeID:           r.ID,
			UserID:             userID,
			Title:              r.Title,
			Description:        r.Description,
			PrepTime:           r.PrepTime,
			CookTime:           r.CookTime,
			Servings:           r.Servings,
			ImageURL:           r.ImageURL,
			Instructions:       r.Instructions,
			VScore:             VScore(tally.owned, total),
			MissingIngredients: missing,
			TotalIngredients:   total,
			OwnedIngredients:   tally.owned,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].VScore > recs[j].VScore
	})

	return Result{Recommendations: recs, Dropped: dropped}
}

// VScore returns owned/total as a percentage rounded half away from zero to
// two decimals. total must be positive.
func VScore(owned, total int) float64 {
	return math.Round(float64(owned)*10000/float64(total)) / 100
}

func toSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
