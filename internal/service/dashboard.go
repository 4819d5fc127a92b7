package service

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/apperrors"
	"github.com/pantrychef/backend/internal/models"
	"github.com/pantrychef/backend/internal/types"
)

const topMissingLimit = 5

// DashboardService summarizes a user's pantry against their recommendations.
type DashboardService struct {
	db              *gorm.DB
	recommendations *RecommendationService
}

func NewDashboardService(db *gorm.DB, recommendations *RecommendationService) *DashboardService {
	return &DashboardService{db: db, recommendations: recommendations}
}

func (s *DashboardService) GetStats(ctx context.Context, userID uuid.UUID) (*types.DashboardStats, error) {
	stats := &types.DashboardStats{TopMissing: []types.MissingCount{}}

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.PantryItem{}).Where("user_id = ?", userID).Count(&stats.PantryItems).Error; err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}
	if err := db.Model(&models.Restriction{}).Where("user_id = ?", userID).Count(&stats.Restrictions).Error; err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}

	recs, err := s.recommendations.Recommend(ctx, userID, types.RecommendationQuery{})
	if err != nil {
		return nil, err
	}
	stats.RecommendedRecipes = len(recs)
	if len(recs) == 0 {
		return stats, nil
	}

	var total float64
	missing := map[string]int{}
	for _, r := range recs {
		total += r.VScore
		if r.Cookable() {
			stats.CookableRecipes++
		}
		for _, name := range r.MissingIngredients {
			missing[name]++
		}
	}
	stats.AverageVScore = math.Round(total/float64(len(recs))*100) / 100

	for name, count := range missing {
		stats.TopMissing = append(stats.TopMissing, types.MissingCount{Name: name, Count: count})
	}
	sort.Slice(stats.TopMissing, func(i, j int) bool {
		a, b := stats.TopMissing[i], stats.TopMissing[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	if len(stats.TopMissing) > topMissingLimit {
		stats.TopMissing = stats.TopMissing[:topMissingLimit]
	}
	return stats, nil
}
