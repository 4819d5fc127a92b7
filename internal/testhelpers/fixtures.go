package testhelpers

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/models"
)

// DefaultPassword is the plaintext password of every fixture user.
const DefaultPassword = "password123"

// Fixtures inserts test rows directly through gorm.
type Fixtures struct {
	t     *testing.T
	db    *gorm.DB
	faker *gofakeit.Faker
	seq   int
}

func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db, faker: gofakeit.New(42)}
}

func (f *Fixtures) next() int {
	f.seq++
	return f.seq
}

func (f *Fixtures) create(value interface{}) {
	f.t.Helper()
	if err := f.db.Create(value).Error; err != nil {
		f.t.Fatalf("failed to create fixture %T: %v", value, err)
	}
}

// User creates a user with the given role and DefaultPassword.
func (f *Fixtures) User(role string) *models.User {
	f.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Name:         f.faker.Name(),
		Email:        fmt.Sprintf("user%d.%s", f.next(), f.faker.Email()),
		PasswordHash: string(hash),
		Role:         role,
	}
	f.create(user)
	return user
}

// Ingredient creates an ingredient; an empty name gets a generated one.
func (f *Fixtures) Ingredient(name string) *models.Ingredient {
	f.t.Helper()
	if name == "" {
		name = fmt.Sprintf("%s %d", f.faker.Noun(), f.next())
	}
	category := f.faker.RandomString([]string{"dairy", "produce", "pantry", "spices"})
	ing := &models.Ingredient{Name: name, Category: &category}
	f.create(ing)
	return ing
}

// Ingredients creates one ingredient per name.
func (f *Fixtures) Ingredients(names ...string) []*models.Ingredient {
	f.t.Helper()
	out := make([]*models.Ingredient, len(names))
	for i, n := range names {
		out[i] = f.Ingredient(n)
	}
	return out
}

// Recipe creates a recipe requiring the ingredients in the given order.
func (f *Fixtures) Recipe(title string, ingredients ...*models.Ingredient) *models.Recipe {
	f.t.Helper()
	desc := f.faker.Sentence(8)
	servings := f.faker.Number(1, 6)
	recipe := &models.Recipe{Title: title, Description: &desc, Servings: &servings}
	f.create(recipe)

	for i, ing := range ingredients {
		f.create(&models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ing.ID,
			Position:     i + 1,
			Quantity:     float64(f.faker.Number(1, 4)),
		})
	}
	return recipe
}

// Own adds the ingredients to the user's pantry.
func (f *Fixtures) Own(userID uuid.UUID, ingredients ...*models.Ingredient) []*models.PantryItem {
	f.t.Helper()
	items := make([]*models.PantryItem, len(ingredients))
	for i, ing := range ingredients {
		items[i] = &models.PantryItem{UserID: userID, IngredientID: ing.ID}
		f.create(items[i])
	}
	return items
}

// Restrict records restrictions of one type for the user.
func (f *Fixtures) Restrict(userID uuid.UUID, typ models.RestrictionType, ingredients ...*models.Ingredient) []*models.Restriction {
	f.t.Helper()
	out := make([]*models.Restriction, len(ingredients))
	for i, ing := range ingredients {
		out[i] = &models.Restriction{UserID: userID, IngredientID: ing.ID, Type: typ}
		f.create(out[i])
	}
	return out
}

// OmeletteIngredients are the six ingredients of the Omelette fixture, in
// requirement order.
var OmeletteIngredients = []string{"Eggs", "Cheese", "Milk", "Butter", "Salt", "Pepper"}

// Omelette creates the Omelette recipe and returns it with its ingredients
// keyed by name.
func (f *Fixtures) Omelette() (*models.Recipe, map[string]*models.Ingredient) {
	f.t.Helper()
	ings := f.Ingredients(OmeletteIngredients...)
	byName := make(map[string]*models.Ingredient, len(ings))
	for _, ing := range ings {
		byName[ing.Name] = ing
	}
	return f.Recipe("Omelette", ings...), byName
}
