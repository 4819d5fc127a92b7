package recommend

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pantrychef/backend/internal/apperrors"
)

// DataProvider reads the four inputs of a recommendation. Implementations
// return empty slices, not errors, for a user with no rows.
type DataProvider interface {
	// ListRecipes returns every catalog recipe in catalog order.
	ListRecipes(ctx context.Context) ([]Recipe, error)

	// ListRequirements returns every requirement, grouped by recipe and in
	// insertion order within a recipe.
	ListRequirements(ctx context.Context) ([]Requirement, error)

	// ListPantryIngredientIDs returns the ingredients the user owns.
	ListPantryIngredientIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// ListRestrictedIngredientIDs returns the ingredients the user avoids.
	ListRestrictedIngredientIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// Engine computes recommendations from a DataProvider. It is safe for
// concurrent use.
type Engine struct {
	provider DataProvider
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewEngine(provider DataProvider, logger *zap.Logger) *Engine {
	return &Engine{
		provider: provider,
		logger:   logger.Named("recommend"),
		tracer:   otel.Tracer("pantrychef/recommend"),
	}
}

// Recommend returns the ranked recommendations for userID. A storage failure
// is returned as a StorageUnavailable error and is not retried.
func (e *Engine) Recommend(ctx context.Context, userID uuid.UUID) ([]Recommendation, error) {
	ctx, span := e.tracer.Start(ctx, "recommend.Recommend",
		trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer span.End()

	snap, err := e.load(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result := Compute(userID, snap)
	if result.Dropped > 0 {
		e.logger.Warn("skipped dangling recipe requirements",
			zap.String("user_id", userID.String()),
			zap.Int("dropped", result.Dropped))
	}

	span.SetAttributes(
		attribute.Int("recommend.recipes", len(snap.Recipes)),
		attribute.Int("recommend.results", len(result.Recommendations)),
	)
	return result.Recommendations, nil
}

func (e *Engine) load(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recipes, err := e.provider.ListRecipes(gctx)
		if err != nil {
			return fmt.Errorf("list recipes: %w", err)
		}
		snap.Recipes = recipes
		return nil
	})
	g.Go(func() error {
		reqs, err := e.provider.ListRequirements(gctx)
		if err != nil {
			return fmt.Errorf("list requirements: %w", err)
		}
		snap.Requirements = reqs
		return nil
	})
	g.Go(func() error {
		pantry, err := e.provider.ListPantryIngredientIDs(gctx, userID)
		if err != nil {
			return fmt.Errorf("list pantry: %w", err)
		}
		snap.Pantry = pantry
		return nil
	})
	g.Go(func() error {
		restricted, err := e.provider.ListRestrictedIngredientIDs(gctx, userID)
		if err != nil {
			return fmt.Errorf("list restrictions: %w", err)
		}
		snap.Restricted = restricted
		return nil
	})

	if err := g.Wait(); err != nil {
		if _, ok := apperrors.As(err); ok {
			return Snapshot{}, err
		}
		return Snapshot{}, apperrors.StorageUnavailable(err)
	}
	return snap, nil
}
