package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"qihuang-chef/internal/plan"
	"qihuang-chef/internal/session"
)

// TasteOptions are the one-tap refine directives offered after a plan.
var TasteOptions = []string{"更辣一些", "不要辣", "更甜一点", "低油盐", "浓郁重口", "清淡解腻"}

// formatPlan renders the committed plan with prep days first. The stored menu
// order is never touched; only the rendering is reordered.
func formatPlan(p *plan.WeeklyPlan, rec *plan.TodayRecommendation) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *%s*\n_%s_\n\n", p.Theme, p.Philosophy))

	if rec != nil {
		sb.WriteString(fmt.Sprintf("🍲 *今日特别推荐：%s*\n%s\n_%s_\n\n", rec.Name, rec.Benefit, rec.Reason))
	}

	for _, day := range plan.DisplayMenu(p.Menu) {
		if plan.IsPrepDay(day.Day) {
			sb.WriteString(fmt.Sprintf("*%s* 🔖 备菜核心\n", day.Day))
		} else {
			sb.WriteString(fmt.Sprintf("*%s*\n", day.Day))
		}
		sb.WriteString(fmt.Sprintf("💡 %s\n", day.PreparationTip))
		sb.WriteString(fmt.Sprintf("午餐：%s (%s)\n", day.Lunch.Name, day.Lunch.CookTime))
		sb.WriteString(fmt.Sprintf("晚餐：%s (%s)\n", day.Dinner.Name, day.Dinner.CookTime))
		if plan.IsPrepDay(day.Day) && len(day.WeekendPrepOperations) > 0 {
			sb.WriteString("📝 全周食材预处理：\n")
			for i, op := range day.WeekendPrepOperations {
				sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, op))
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("查看食谱：/menu · 采购清单：/list · 口味微调：/refine")
	return sb.String()
}

// formatShoppingList renders the grocery list with purchased items struck out.
func formatShoppingList(p *plan.WeeklyPlan, sess *session.Session) string {
	var sb strings.Builder
	sb.WriteString("🛒 *全周精准清单*\n\n")
	for cIdx, cat := range p.GroceryList {
		sb.WriteString(fmt.Sprintf("*【%s】*\n", cat.Category))
		for iIdx, item := range cat.Items {
			if sess.Purchased(plan.ItemID(cIdx, iIdx)) {
				sb.WriteString(fmt.Sprintf("  ✅ ~%s: %s~\n", item.Name, item.Amount))
			} else {
				sb.WriteString(fmt.Sprintf("  ⬜ %s: %s\n", item.Name, item.Amount))
			}
		}
	}
	return sb.String()
}

// shoppingKeyboard builds one toggle button per grocery item.
func shoppingKeyboard(p *plan.WeeklyPlan, sess *session.Session) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for cIdx, cat := range p.GroceryList {
		var row []tgbotapi.InlineKeyboardButton
		for iIdx, item := range cat.Items {
			label := item.Name
			if sess.Purchased(plan.ItemID(cIdx, iIdx)) {
				label = "✅ " + label
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("buy|%d|%d", cIdx, iIdx)))
			if len(row) == 3 {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// formatRecipe renders the full recipe detail view.
func formatRecipe(r plan.Recipe, sess *session.Session) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🍛 *%s*  (%s)\n", r.Name, r.Calories))
	sb.WriteString(fmt.Sprintf("🌿 %s · 推荐饮品：%s\n", r.TCMBenefit, r.TCMDrink))
	sb.WriteString(fmt.Sprintf("⚠️ 药食避坑：%s\n", r.TCMTaboos))
	sb.WriteString(fmt.Sprintf("⏱ 备菜 %s / 烹饪 %s · 难度 %s · %s\n\n", r.PrepTime, r.CookTime, r.Difficulty, r.CuisineStyle))

	sb.WriteString("*食材清单与用量*\n")
	for _, ing := range r.Ingredients {
		sb.WriteString(fmt.Sprintf("  • %s: %s\n", ing.Name, ing.Amount))
	}

	sb.WriteString("\n*保姆级实操步骤*\n")
	for i, step := range r.Steps {
		mark := fmt.Sprintf("%d.", i+1)
		if i < len(r.StepKeys) && sess.StepDone(r.StepKeys[i]) {
			mark = "✅"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", mark, step))
	}

	if sess.RecipeCompleted(r) {
		sb.WriteString("\n🎉 全部步骤完成！")
	}
	return sb.String()
}

// recipeKeyboard offers per-step done/illustrate toggles and the favorite
// button. dayIdx/meal address the recipe in the stored menu order.
func recipeKeyboard(r plan.Recipe, sess *session.Session, dayIdx int, meal string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i := range r.Steps {
		label := fmt.Sprintf("☑️%d", i+1)
		if i < len(r.StepKeys) && sess.StepDone(r.StepKeys[i]) {
			label = fmt.Sprintf("✅%d", i+1)
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("step|%d|%s|%d", dayIdx, meal, i)))
		if len(row) == 4 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	favLabel := "🤍 收藏"
	if sess.IsFavorite(r.Name) {
		favLabel = "❤️ 已收藏"
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(favLabel, fmt.Sprintf("fav|%d|%s", dayIdx, meal)),
		tgbotapi.NewInlineKeyboardButtonData("📷 步骤示意图", fmt.Sprintf("img|%d|%s|0", dayIdx, meal)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// focusKeyboard renders all focus tags with the active ones checked.
func focusKeyboard(sess *session.Session) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, f := range plan.AllFocuses {
		label := f.Label()
		if sess.HasFocus(f) {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "focus|"+string(f)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⚡ 开始智能排餐", "plan"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// tasteKeyboard offers the one-tap refine directives.
func tasteKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, taste := range TasteOptions {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(taste, fmt.Sprintf("taste|%d", i)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// menuKeyboard lists days (prep days first) linking to their meals.
func menuKeyboard(p *plan.WeeklyPlan) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, day := range plan.DisplayMenu(p.Menu) {
		idx := indexOfDay(p.Menu, day.Day)
		if idx < 0 {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(day.Day+" 午餐", fmt.Sprintf("meal|%d|L", idx)),
			tgbotapi.NewInlineKeyboardButtonData(day.Day+" 晚餐", fmt.Sprintf("meal|%d|D", idx)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func indexOfDay(menu []plan.DailyMenu, day string) int {
	for i, dm := range menu {
		if dm.Day == day {
			return i
		}
	}
	return -1
}
