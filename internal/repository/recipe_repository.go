package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipefinder/backend/internal/model"
)

// ErrNotFound is returned when a recipe does not exist
var ErrNotFound = errors.New("recipe not found")

// recipeColumns selects everything but the embedding
const recipeColumns = "id, created_at, updated_at, name, description, cook_time, difficulty, rating, image, mood, ingredients, instructions, tip, tags, search_text"

// ScoredRecipe is a stored recipe with a relevance or similarity score
type ScoredRecipe struct {
	model.Recipe `gorm:"embedded"`
	Score        float64 `gorm:"column:score"`
}

// RecipeRepository reads and writes recipe documents. On postgres it uses
// pgvector and full-text search; on sqlite it scores in process.
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new RecipeRepository
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

func (r *RecipeRepository) postgres() bool {
	return r.db.Dialector.Name() == "postgres"
}

// NearestByEmbedding returns up to limit recipes closest to vec by cosine
// similarity, best first. numCandidates sizes the HNSW search pool.
func (r *RecipeRepository) NearestByEmbedding(ctx context.Context, vec []float32, numCandidates, limit int) ([]ScoredRecipe, error) {
	if len(vec) == 0 || limit <= 0 {
		return nil, nil
	}
	if !r.postgres() {
		return r.nearestInProcess(ctx, vec, limit)
	}

	v := pgvector.NewVector(vec)
	var rows []ScoredRecipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if numCandidates > 0 {
			if err := tx.Exec(fmt.Sprintf("SET LOCAL hnsw.ef_search = %d", numCandidates)).Error; err != nil {
				return fmt.Errorf("failed to set search pool size: %w", err)
			}
		}
		return tx.Model(&model.Recipe{}).
			Select(recipeColumns+", 1 - (embedding <=> ?) AS score", v).
			Where("embedding IS NOT NULL").
			Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{v}},
			}).
			Limit(limit).
			Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return rows, nil
}

func (r *RecipeRepository) nearestInProcess(ctx context.Context, vec []float32, limit int) ([]ScoredRecipe, error) {
	var recipes []model.Recipe
	if err := r.db.WithContext(ctx).Where("embedding IS NOT NULL").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	rows := make([]ScoredRecipe, 0, len(recipes))
	for _, rec := range recipes {
		if rec.Embedding == nil {
			continue
		}
		score := CosineSimilarity(vec, rec.Embedding.Slice())
		rec.Embedding = nil
		rows = append(rows, ScoredRecipe{Recipe: rec, Score: score})
	}
	sortByScore(rows)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// KeywordSearch ranks recipes whose name, description, ingredients, tags or
// mood contain any of terms. Results are best first.
func (r *RecipeRepository) KeywordSearch(ctx context.Context, terms []string, limit int) ([]ScoredRecipe, error) {
	terms = cleanTerms(terms)
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}
	if !r.postgres() {
		return r.keywordInProcess(ctx, terms, limit)
	}

	query := strings.Join(terms, " or ")
	var rows []ScoredRecipe
	err := r.db.WithContext(ctx).Model(&model.Recipe{}).
		Select(recipeColumns+", ts_rank(to_tsvector('english', search_text), websearch_to_tsquery('english', ?)) AS score", query).
		Where("to_tsvector('english', search_text) @@ websearch_to_tsquery('english', ?)", query).
		Order("score DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	return rows, nil
}

func (r *RecipeRepository) keywordInProcess(ctx context.Context, terms []string, limit int) ([]ScoredRecipe, error) {
	q := r.db.WithContext(ctx).Model(&model.Recipe{}).Select(recipeColumns)
	conds := make([]string, 0, len(terms))
	args := make([]interface{}, 0, len(terms))
	for _, term := range terms {
		conds = append(conds, "search_text LIKE ?")
		args = append(args, "%"+term+"%")
	}
	var recipes []model.Recipe
	if err := q.Where(strings.Join(conds, " OR "), args...).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	rows := make([]ScoredRecipe, 0, len(recipes))
	for _, rec := range recipes {
		matched := 0
		for _, term := range terms {
			if strings.Contains(rec.SearchText, term) {
				matched++
			}
		}
		rows = append(rows, ScoredRecipe{Recipe: rec, Score: float64(matched) / float64(len(terms))})
	}
	sortByScore(rows)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// FindByID returns the recipe with the given id
func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	err := r.db.WithContext(ctx).Select(recipeColumns).Where("id = ?", id).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Popular returns the highest-rated recipes, newest first on ties
func (r *RecipeRepository) Popular(ctx context.Context, limit int) ([]model.Recipe, error) {
	var recipes []model.Recipe
	err := r.db.WithContext(ctx).
		Select(recipeColumns).
		Order("rating DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&recipes).Error
	return recipes, err
}

// UpsertByName inserts recipe, or replaces the stored recipe with the same
// name while keeping its id.
func (r *RecipeRepository) UpsertByName(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Recipe
		err := tx.Select("id", "created_at").Where("name = ?", recipe.Name).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(recipe).Error
		case err != nil:
			return err
		}
		recipe.ID = existing.ID
		recipe.CreatedAt = existing.CreatedAt
		return tx.Save(recipe).Error
	})
}

// Count returns the number of stored recipes
func (r *RecipeRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Recipe{}).Count(&n).Error
	return n, err
}

// CosineSimilarity returns the cosine similarity of a and b, or 0 when the
// lengths differ or either vector is zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func sortByScore(rows []ScoredRecipe) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})
}

func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
