package plan

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecipe(name string) Recipe {
	return Recipe{
		Name:        name,
		TCMBenefit:  "健脾益气",
		TCMDrink:    "陈皮水",
		TCMTaboos:   "湿热体质少食",
		Calories:    "450 kcal",
		PrepTime:    "10分钟",
		CookTime:    "20分钟",
		Difficulty:  "简单",
		Ingredients: []Ingredient{{Name: "山药", Amount: "200克"}},
		Steps:       []string{"山药去皮切3厘米滚刀块", "中火蒸15分钟至筷子可轻松插入"},
	}
}

func samplePlanJSON(t *testing.T) []byte {
	t.Helper()
	days := []string{"周六", "周日", "周一", "周二", "周三", "周四", "周五"}
	menu := make([]DailyMenu, 0, len(days))
	for _, day := range days {
		dm := DailyMenu{
			Day:            day,
			Lunch:          sampleRecipe(day + "午餐菜"),
			Dinner:         sampleRecipe(day + "晚餐菜"),
			PreparationTip: "提前取出周末备好的半成品",
		}
		if day == "周六" || day == "周日" {
			dm.WeekendPrepOperations = []string{"鸡胸肉500克切条腌制", "杂粮饭煮1.5升分装冷藏"}
		}
		menu = append(menu, dm)
	}
	p := WeeklyPlan{
		Theme:      "秋季润燥周",
		Philosophy: "以白色食材润肺，少辛增酸",
		GroceryList: []ShoppingCategory{
			{Category: "蔬菜水果", Items: []Ingredient{{Name: "山药", Amount: "1.4公斤"}, {Name: "梨", Amount: "4个"}}},
			{Category: "肉禽蛋", Items: []Ingredient{{Name: "鸡胸肉", Amount: "500克"}}},
		},
		Menu: menu,
	}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	return data
}

func TestDecodeAssignsIDAndStepKeys(t *testing.T) {
	p, err := Decode(samplePlanJSON(t))
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "秋季润燥周", p.Theme)
	require.Len(t, p.Menu, 7)

	lunch := p.Menu[0].Lunch
	require.Len(t, lunch.StepKeys, len(lunch.Steps))
	assert.Equal(t, lunch.Name+"#0", lunch.StepKeys[0])
	assert.Equal(t, lunch.Name+"#1", lunch.StepKeys[1])

	// Two decodes of the same payload are distinct plans.
	p2, err := Decode(samplePlanJSON(t))
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, p2.ID)
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"theme": "broken"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse weekly plan JSON")
}

func TestDecodeRejectsInvalidPlans(t *testing.T) {
	mutate := func(t *testing.T, f func(p *WeeklyPlan)) []byte {
		t.Helper()
		var p WeeklyPlan
		require.NoError(t, json.Unmarshal(samplePlanJSON(t), &p))
		f(&p)
		data, err := json.Marshal(p)
		require.NoError(t, err)
		return data
	}

	cases := []struct {
		name    string
		mutator func(p *WeeklyPlan)
		wantErr string
	}{
		{"missing theme", func(p *WeeklyPlan) { p.Theme = "" }, "missing theme"},
		{"missing philosophy", func(p *WeeklyPlan) { p.Philosophy = "" }, "missing philosophy"},
		{"empty grocery list", func(p *WeeklyPlan) { p.GroceryList = nil }, "missing groceryList"},
		{"empty menu", func(p *WeeklyPlan) { p.Menu = nil }, "missing menu"},
		{"missing day label", func(p *WeeklyPlan) { p.Menu[2].Day = "" }, "missing day"},
		{"duplicate day", func(p *WeeklyPlan) { p.Menu[1].Day = p.Menu[0].Day }, "duplicate day"},
		{"missing prep tip", func(p *WeeklyPlan) { p.Menu[3].PreparationTip = "" }, "missing preparationTip"},
		{"recipe without name", func(p *WeeklyPlan) { p.Menu[0].Lunch.Name = "" }, "missing name"},
		{"recipe without ingredients", func(p *WeeklyPlan) { p.Menu[0].Dinner.Ingredients = nil }, "no ingredients"},
		{"recipe without steps", func(p *WeeklyPlan) { p.Menu[4].Lunch.Steps = nil }, "no steps"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(mutate(t, tc.mutator))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestItemID(t *testing.T) {
	assert.Equal(t, "0-0", ItemID(0, 0))
	assert.Equal(t, "2-11", ItemID(2, 11))
}

func TestIllustrationDataURI(t *testing.T) {
	il := Illustration{MIMEType: "image/png", Data: []byte{0x89, 0x50}}
	uri := il.DataURI()
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}

func TestDisplayMenuPutsPrepDaysFirst(t *testing.T) {
	menu := []DailyMenu{
		{Day: "周一"}, {Day: "周二"}, {Day: "周三"},
		{Day: "周四"}, {Day: "周五"}, {Day: "周六"}, {Day: "周日"},
	}
	got := DisplayMenu(menu)

	var order []string
	for _, dm := range got {
		order = append(order, dm.Day)
	}
	assert.Equal(t, []string{"周六", "周日", "周一", "周二", "周三", "周四", "周五"}, order)

	// The stored slice keeps its original order.
	assert.Equal(t, "周一", menu[0].Day)
	assert.Equal(t, "周日", menu[6].Day)
}

func TestDisplayMenuSinksUnknownDays(t *testing.T) {
	menu := []DailyMenu{{Day: "某天"}, {Day: "周五"}, {Day: "周六"}}
	got := DisplayMenu(menu)
	assert.Equal(t, "周六", got[0].Day)
	assert.Equal(t, "周五", got[1].Day)
	assert.Equal(t, "某天", got[2].Day)
}

func TestIsPrepDay(t *testing.T) {
	assert.True(t, IsPrepDay("周六"))
	assert.True(t, IsPrepDay("周日 (备菜日)"))
	assert.False(t, IsPrepDay("周三"))
}

func TestSeasonFor(t *testing.T) {
	cases := map[time.Month]string{
		time.January: "冬季", time.February: "冬季", time.December: "冬季",
		time.March: "春季", time.May: "春季",
		time.June: "夏季", time.August: "夏季",
		time.September: "秋季", time.November: "秋季",
	}
	for month, want := range cases {
		at := time.Date(2026, month, 15, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, want, SeasonFor(at), fmt.Sprintf("month %v", month))
	}
}

func TestFocusLabels(t *testing.T) {
	assert.Equal(t, "爆款风味", FocusTasty.Label())
	assert.Equal(t, "智能自动", FocusAuto.Label())
	// Unknown tags fall back to the raw value.
	assert.Equal(t, "mystery", Focus("mystery").Label())

	assert.Len(t, AllFocuses, 16)
	for _, f := range AllFocuses {
		parsed, ok := ParseFocus(string(f))
		assert.True(t, ok)
		assert.Equal(t, f, parsed)
	}

	_, ok := ParseFocus("not_a_tag")
	assert.False(t, ok)
}
