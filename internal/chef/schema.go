package chef

import "qihuang-chef/internal/llm"

func ingredientSchema() *llm.Schema {
	return llm.Object(map[string]*llm.Schema{
		"name":   llm.String(""),
		"amount": llm.String(""),
	}, "name", "amount")
}

func recipeSchema() *llm.Schema {
	return llm.Object(map[string]*llm.Schema{
		"name":             llm.String(""),
		"tcmBenefit":       llm.String(""),
		"tcmDrink":         llm.String(""),
		"tcmTaboos":        llm.String("中医禁忌，如：感冒发热期间不宜食用"),
		"calories":         llm.String(""),
		"nutritionSummary": llm.String(""),
		"prepTime":         llm.String(""),
		"cookTime":         llm.String(""),
		"difficulty":       llm.String(""),
		"efficiencyTag":    llm.String(""),
		"cuisineStyle":     llm.String(""),
		"ingredients":      llm.Array(ingredientSchema()),
		"steps":            llm.Array(llm.String("极其详细的步骤，包含火候控制（如：中大火）、切割规格（如：2mm薄片）、状态判断标准（如：直到色泽金黄）")),
	},
		"name", "tcmBenefit", "tcmDrink", "tcmTaboos", "calories", "nutritionSummary",
		"prepTime", "cookTime", "difficulty", "efficiencyTag", "cuisineStyle",
		"ingredients", "steps",
	)
}

func weeklyPlanSchema() *llm.Schema {
	menuEntry := llm.Object(map[string]*llm.Schema{
		"day":            llm.String("周六至周五共七天"),
		"preparationTip": llm.String(""),
		"weekendPrepOperations": llm.Array(
			llm.String("详细的批量备菜步骤，必须包含精准量化（如：将500g猪肉切成3cm方块）和分装预处理指导"),
		),
		"lunch":  recipeSchema(),
		"dinner": recipeSchema(),
	}, "day", "lunch", "dinner", "preparationTip")

	grocery := llm.Object(map[string]*llm.Schema{
		"category": llm.String(""),
		"items":    llm.Array(ingredientSchema()),
	}, "category", "items")

	return llm.Object(map[string]*llm.Schema{
		"theme":       llm.String(""),
		"philosophy":  llm.String(""),
		"groceryList": llm.Array(grocery),
		"menu":        llm.Array(menuEntry),
	}, "theme", "philosophy", "groceryList", "menu")
}

func recommendationSchema() *llm.Schema {
	return llm.Object(map[string]*llm.Schema{
		"name":    llm.String(""),
		"benefit": llm.String(""),
		"reason":  llm.String(""),
	}, "name", "benefit", "reason")
}
