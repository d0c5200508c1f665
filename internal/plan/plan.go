package plan

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Ingredient is a single shopping or recipe item with its quantity.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// Recipe is a single dish with its TCM profile, ingredients and cooking steps.
// The field set mirrors what the model is asked to produce.
type Recipe struct {
	Name             string       `json:"name"`
	TCMBenefit       string       `json:"tcmBenefit"`
	TCMDrink         string       `json:"tcmDrink"`
	TCMTaboos        string       `json:"tcmTaboos"`
	Calories         string       `json:"calories"`
	NutritionSummary string       `json:"nutritionSummary"`
	PrepTime         string       `json:"prepTime"`
	CookTime         string       `json:"cookTime"`
	Difficulty       string       `json:"difficulty"`
	EfficiencyTag    string       `json:"efficiencyTag"`
	CuisineStyle     string       `json:"cuisineStyle"`
	Ingredients      []Ingredient `json:"ingredients"`
	Steps            []string     `json:"steps"`

	// StepKeys are stable per-step identifiers assigned once at plan creation.
	// Completion and illustration state is keyed by these, not by the step
	// text, so regenerated wording does not orphan recorded state.
	StepKeys []string `json:"stepKeys,omitempty"`
}

// AssignStepKeys gives every step an ordinal identity tied to the recipe name.
func (r *Recipe) AssignStepKeys() {
	r.StepKeys = make([]string, len(r.Steps))
	for i := range r.Steps {
		r.StepKeys[i] = fmt.Sprintf("%s#%d", r.Name, i)
	}
}

// DailyMenu holds one day's meals. WeekendPrepOperations is only present on
// designated prep days (Saturday/Sunday).
type DailyMenu struct {
	Day                   string   `json:"day"`
	Lunch                 Recipe   `json:"lunch"`
	Dinner                Recipe   `json:"dinner"`
	PreparationTip        string   `json:"preparationTip"`
	WeekendPrepOperations []string `json:"weekendPrepOperations,omitempty"`
}

// ShoppingCategory groups grocery items under a category label.
type ShoppingCategory struct {
	Category string       `json:"category"`
	Items    []Ingredient `json:"items"`
}

// WeeklyPlan is the full structured result of a plan request.
type WeeklyPlan struct {
	ID          string             `json:"id,omitempty"`
	Theme       string             `json:"theme"`
	Philosophy  string             `json:"philosophy"`
	GroceryList []ShoppingCategory `json:"groceryList"`
	Menu        []DailyMenu        `json:"menu"`
}

// TodayRecommendation is the decorative single-dish suggestion.
type TodayRecommendation struct {
	Name    string `json:"name"`
	Benefit string `json:"benefit"`
	Reason  string `json:"reason"`
}

// Illustration is a generated step image with its declared MIME type.
type Illustration struct {
	MIMEType string
	Data     []byte
}

// DataURI renders the image as a data URI for inline display.
func (il Illustration) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", il.MIMEType, base64.StdEncoding.EncodeToString(il.Data))
}

// Decode parses a model response into a validated WeeklyPlan and assigns the
// plan ID and stable step keys. Any validation failure rejects the whole
// response; no partial plans are ever returned.
func Decode(data []byte) (*WeeklyPlan, error) {
	var p WeeklyPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse weekly plan JSON: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.ID = uuid.NewString()
	for i := range p.Menu {
		p.Menu[i].Lunch.AssignStepKeys()
		p.Menu[i].Dinner.AssignStepKeys()
	}
	return &p, nil
}

// Validate checks the required fields of the plan schema.
func (p *WeeklyPlan) Validate() error {
	if p.Theme == "" {
		return fmt.Errorf("plan is missing theme")
	}
	if p.Philosophy == "" {
		return fmt.Errorf("plan is missing philosophy")
	}
	if len(p.GroceryList) == 0 {
		return fmt.Errorf("plan is missing groceryList")
	}
	if len(p.Menu) == 0 {
		return fmt.Errorf("plan is missing menu")
	}
	seen := make(map[string]struct{}, len(p.Menu))
	for i, day := range p.Menu {
		if day.Day == "" {
			return fmt.Errorf("menu entry %d is missing day", i)
		}
		if _, dup := seen[day.Day]; dup {
			return fmt.Errorf("duplicate day %q in menu", day.Day)
		}
		seen[day.Day] = struct{}{}
		if day.PreparationTip == "" {
			return fmt.Errorf("menu entry %q is missing preparationTip", day.Day)
		}
		if err := day.Lunch.validate(); err != nil {
			return fmt.Errorf("lunch for %q: %w", day.Day, err)
		}
		if err := day.Dinner.validate(); err != nil {
			return fmt.Errorf("dinner for %q: %w", day.Day, err)
		}
	}
	return nil
}

func (r *Recipe) validate() error {
	if r.Name == "" {
		return fmt.Errorf("recipe is missing name")
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("recipe %q has no ingredients", r.Name)
	}
	if len(r.Steps) == 0 {
		return fmt.Errorf("recipe %q has no steps", r.Name)
	}
	return nil
}

// ItemID builds the purchase identifier for a grocery item by its position.
func ItemID(categoryIdx, itemIdx int) string {
	return fmt.Sprintf("%d-%d", categoryIdx, itemIdx)
}
