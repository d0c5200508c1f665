package telegram

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"qihuang-chef/internal/plan"
	"qihuang-chef/internal/session"
)

type memStore struct {
	favorites []plan.Recipe
	purchased []string
}

func (m *memStore) LoadFavorites() ([]plan.Recipe, error) { return m.favorites, nil }
func (m *memStore) SaveFavorites(f []plan.Recipe) error   { m.favorites = f; return nil }
func (m *memStore) LoadPurchased() ([]string, error)      { return m.purchased, nil }
func (m *memStore) SavePurchased(ids []string) error      { m.purchased = ids; return nil }

func testSession() *session.Session {
	return session.New(&memStore{}, "上海", zerolog.Nop())
}

func testWeeklyPlan() *plan.WeeklyPlan {
	recipe := func(name string) plan.Recipe {
		r := plan.Recipe{
			Name:        name,
			TCMBenefit:  "健脾",
			TCMDrink:    "陈皮水",
			TCMTaboos:   "无",
			Calories:    "400 kcal",
			PrepTime:    "10分钟",
			CookTime:    "20分钟",
			Difficulty:  "简单",
			Ingredients: []plan.Ingredient{{Name: "主料", Amount: "200克"}},
			Steps:       []string{"备料切配", "下锅烹制"},
		}
		r.AssignStepKeys()
		return r
	}
	return &plan.WeeklyPlan{
		ID:         "p1",
		Theme:      "秋季润燥周",
		Philosophy: "少辛增酸",
		GroceryList: []plan.ShoppingCategory{
			{Category: "蔬菜", Items: []plan.Ingredient{{Name: "山药", Amount: "1公斤"}, {Name: "梨", Amount: "4个"}}},
		},
		Menu: []plan.DailyMenu{
			{Day: "周一", Lunch: recipe("周一午"), Dinner: recipe("周一晚"), PreparationTip: "取出备好的半成品"},
			{Day: "周六", Lunch: recipe("周六午"), Dinner: recipe("周六晚"), PreparationTip: "集中备菜",
				WeekendPrepOperations: []string{"鸡胸肉500克切条"}},
		},
	}
}

func TestFormatPlan(t *testing.T) {
	p := testWeeklyPlan()
	rec := &plan.TodayRecommendation{Name: "银耳羹", Benefit: "润肺", Reason: "秋燥"}

	out := formatPlan(p, rec)

	if !strings.Contains(out, "📅 *秋季润燥周*") {
		t.Error("missing theme header")
	}
	if !strings.Contains(out, "今日特别推荐：银耳羹") {
		t.Error("missing today recommendation")
	}
	if !strings.Contains(out, "*周六* 🔖 备菜核心") {
		t.Error("missing prep day marker")
	}
	if !strings.Contains(out, "鸡胸肉500克切条") {
		t.Error("missing weekend prep operation")
	}

	// Prep days render before weekdays even though the stored menu starts
	// with Monday.
	if strings.Index(out, "周六") > strings.Index(out, "*周一*") {
		t.Error("prep day should render first")
	}
	if p.Menu[0].Day != "周一" {
		t.Error("stored menu order must not change")
	}
}

func TestFormatPlanWithoutRecommendation(t *testing.T) {
	out := formatPlan(testWeeklyPlan(), nil)
	if strings.Contains(out, "今日特别推荐") {
		t.Error("should omit recommendation block when nil")
	}
}

func TestFormatShoppingListMarksPurchases(t *testing.T) {
	p := testWeeklyPlan()
	sess := testSession()
	sess.TogglePurchased(plan.ItemID(0, 0))

	out := formatShoppingList(p, sess)
	if !strings.Contains(out, "✅ ~山药: 1公斤~") {
		t.Error("purchased item should be struck out")
	}
	if !strings.Contains(out, "⬜ 梨: 4个") {
		t.Error("unpurchased item should keep its empty box")
	}
}

func TestShoppingKeyboardCallbacks(t *testing.T) {
	p := testWeeklyPlan()
	keyboard := shoppingKeyboard(p, testSession())

	var datas []string
	for _, row := range keyboard.InlineKeyboard {
		for _, btn := range row {
			datas = append(datas, *btn.CallbackData)
		}
	}
	if len(datas) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(datas))
	}
	if datas[0] != "buy|0|0" || datas[1] != "buy|0|1" {
		t.Errorf("unexpected callback data: %v", datas)
	}
}

func TestFormatRecipeShowsProgress(t *testing.T) {
	p := testWeeklyPlan()
	r := p.Menu[0].Lunch
	sess := testSession()

	out := formatRecipe(r, sess)
	if !strings.Contains(out, "🍛 *周一午*") {
		t.Error("missing recipe name")
	}
	if !strings.Contains(out, "1. 备料切配") {
		t.Error("pending step should keep its number")
	}
	if strings.Contains(out, "🎉") {
		t.Error("completion banner should not show yet")
	}

	sess.ToggleStep(r.StepKeys[0])
	sess.ToggleStep(r.StepKeys[1])
	out = formatRecipe(r, sess)
	if !strings.Contains(out, "✅ 备料切配") {
		t.Error("done step should be checked")
	}
	if !strings.Contains(out, "🎉 全部步骤完成！") {
		t.Error("missing completion banner")
	}
}

func TestRecipeKeyboardFavoriteState(t *testing.T) {
	p := testWeeklyPlan()
	r := p.Menu[0].Lunch
	sess := testSession()

	keyboard := recipeKeyboard(r, sess, 0, "L")
	last := keyboard.InlineKeyboard[len(keyboard.InlineKeyboard)-1]
	if last[0].Text != "🤍 收藏" {
		t.Errorf("expected unfavorited label, got %q", last[0].Text)
	}
	if *last[0].CallbackData != "fav|0|L" {
		t.Errorf("unexpected fav callback: %q", *last[0].CallbackData)
	}

	sess.ToggleFavorite(r)
	keyboard = recipeKeyboard(r, sess, 0, "L")
	last = keyboard.InlineKeyboard[len(keyboard.InlineKeyboard)-1]
	if last[0].Text != "❤️ 已收藏" {
		t.Errorf("expected favorited label, got %q", last[0].Text)
	}
}

func TestFocusKeyboardMarksActiveTags(t *testing.T) {
	sess := testSession() // tasty is active by default
	keyboard := focusKeyboard(sess)

	var tastyLabel, autoLabel string
	for _, row := range keyboard.InlineKeyboard {
		for _, btn := range row {
			switch *btn.CallbackData {
			case "focus|tasty":
				tastyLabel = btn.Text
			case "focus|auto":
				autoLabel = btn.Text
			}
		}
	}
	if !strings.HasPrefix(tastyLabel, "✅ ") {
		t.Errorf("active tag should be checked, got %q", tastyLabel)
	}
	if strings.HasPrefix(autoLabel, "✅ ") {
		t.Errorf("inactive tag should not be checked, got %q", autoLabel)
	}
}

func TestTasteKeyboardCoversAllOptions(t *testing.T) {
	keyboard := tasteKeyboard()
	var count int
	for _, row := range keyboard.InlineKeyboard {
		count += len(row)
	}
	if count != len(TasteOptions) {
		t.Errorf("expected %d taste buttons, got %d", len(TasteOptions), count)
	}
}

func TestMenuKeyboardUsesStoredIndices(t *testing.T) {
	p := testWeeklyPlan()
	keyboard := menuKeyboard(p)

	if len(keyboard.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 day rows, got %d", len(keyboard.InlineKeyboard))
	}
	// Saturday renders first but keeps its stored index 1.
	first := keyboard.InlineKeyboard[0]
	if !strings.Contains(first[0].Text, "周六") {
		t.Errorf("prep day should lead, got %q", first[0].Text)
	}
	if *first[0].CallbackData != "meal|1|L" || *first[1].CallbackData != "meal|1|D" {
		t.Errorf("saturday callbacks should use stored index: %q %q", *first[0].CallbackData, *first[1].CallbackData)
	}
}

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		in, cmd, args string
	}{
		{"/plan", "/plan", ""},
		{"/ask 山药怎么处理", "/ask", "山药怎么处理"},
		{"/plan@qihuang_bot", "/plan", ""},
		{"普通文本", "", "普通文本"},
	}
	for _, tc := range cases {
		cmd, args := splitCommand(tc.in)
		if cmd != tc.cmd || args != tc.args {
			t.Errorf("splitCommand(%q) = (%q, %q), want (%q, %q)", tc.in, cmd, args, tc.cmd, tc.args)
		}
	}
}
