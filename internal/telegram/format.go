package telegram

import (
	"fmt"
	"strings"

	"recipe-finder/internal/app"
	"recipe-finder/internal/classify"
	"recipe-finder/internal/filter"
	"recipe-finder/internal/metrics"
	"recipe-finder/internal/recipe"
	"recipe-finder/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram rejects messages longer than this.
const maxMessageLen = 4096

// maxResultButtons caps the inline buttons under a results message.
const maxResultButtons = 10

var retrySuggestions = []string{"chicken", "pasta", "beef", "noodles", "rice"}

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func clip(s string) string {
	runes := []rune(s)
	if len(runes) <= maxMessageLen {
		return s
	}
	return string(runes[:maxMessageLen-2]) + "\n…"
}

func timeLabel(t classify.Time) string {
	switch t {
	case classify.TimeQuick:
		return "15 mins"
	case classify.TimeMedium:
		return "30 mins"
	default:
		return "1+ hour"
	}
}

func formatWelcome(s app.Suggestions) string {
	var sb strings.Builder
	sb.WriteString("🍳 *Recipe Ideas*\n\n")
	sb.WriteString("Send me an ingredient or a dish name and I'll find recipes.\n\n")
	sb.WriteString("*Popular ingredients:* " + esc(strings.Join(s.PopularIngredients, ", ")) + "\n")
	sb.WriteString("*Trending dishes:* " + esc(strings.Join(s.TrendingDishes, ", ")) + "\n\n")
	sb.WriteString("*Commands*\n")
	sb.WriteString("/search <query> - find recipes\n")
	sb.WriteString("/random - a random recipe\n")
	sb.WriteString("/filter time=quick difficulty=easy category=dinner\n")
	sb.WriteString("/filters - show active filters, /clear - reset them\n")
	sb.WriteString("/history - recent searches\n")
	sb.WriteString("/favorites - saved recipes\n")
	sb.WriteString("/shopping - shopping list for your favorites\n")
	sb.WriteString("/theme - switch light/dark\n")
	return sb.String()
}

func formatFilters(f filter.Filters) string {
	if !f.Active() {
		return "No filters active."
	}
	var parts []string
	if f.Time != filter.Any {
		parts = append(parts, timeLabel(classify.Time(f.Time)))
	}
	if f.Difficulty != filter.Any {
		parts = append(parts, f.Difficulty)
	}
	if f.Meal != filter.Any {
		parts = append(parts, f.Meal)
	}
	return "Filtered by: " + strings.Join(parts, ", ")
}

// formatResults renders the filtered results of a resolution.
func formatResults(query string, recipes []recipe.Recipe, f filter.Filters, favorites func(string) bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🍽 *Found %s* for \"%s\"\n", esc(plural(len(recipes), "delicious recipe")), esc(query)))
	if f.Active() {
		sb.WriteString("_" + esc(formatFilters(f)) + "_\n")
	}
	sb.WriteString("\n")
	for i, r := range recipes {
		c := classify.Classify(r.Name)
		star := ""
		if favorites(r.ID) {
			star = " ❤️"
		}
		sb.WriteString(fmt.Sprintf("%d. *%s*%s\n   ⏱ %s · %s", i+1, esc(r.Name), star, timeLabel(c.Time), c.Difficulty))
		if c.Meal != classify.MealNone {
			sb.WriteString(" · " + string(c.Meal))
		}
		sb.WriteString("\n")
	}
	if len(recipes) > 0 {
		sb.WriteString("\nTap a recipe to see full details.")
	}
	return clip(sb.String())
}

func formatNoResults(query string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔍 *No recipes found* for \"%s\"\n\n", esc(query)))
	sb.WriteString("That ingredient might not be in our database. Try main ingredients like meats, vegetables, or specific items.\n\n")
	sb.WriteString("💡 *Search tips*\n")
	sb.WriteString("• Ingredients: chicken, beef, tomato, mushroom\n")
	sb.WriteString("• Dish names: pasta, noodles, curry, soup\n")
	sb.WriteString("• Combinations: chicken rice, beef noodles\n")
	sb.WriteString("• Try: " + esc(strings.Join(retrySuggestions, ", ")))
	return sb.String()
}

func formatError(msg string) string {
	return "❌ *Oops! Something went wrong*\n" + esc(msg)
}

// formatRecipe renders the detail view of one recipe.
func formatRecipe(r recipe.Recipe) string {
	var sb strings.Builder
	c := classify.Classify(r.Name)

	sb.WriteString("🍲 *" + esc(r.Name) + "*\n")
	var meta []string
	if r.Category != "" {
		meta = append(meta, r.Category)
	}
	if r.Area != "" {
		meta = append(meta, r.Area)
	}
	if len(meta) > 0 {
		sb.WriteString("_" + esc(strings.Join(meta, " · ")) + "_\n")
	}
	sb.WriteString(fmt.Sprintf("⏱ %s · 📊 %s", timeLabel(c.Time), c.Difficulty))
	if c.Meal != classify.MealNone {
		sb.WriteString(" · 🍽 " + string(c.Meal))
	}
	sb.WriteString("\n")
	if len(r.Tags) > 0 {
		sb.WriteString("🏷 " + esc(strings.Join(r.Tags, ", ")) + "\n")
	}

	if !r.Detailed {
		sb.WriteString("\nFull recipe details are not available right now. Try the external links for the full recipe!")
		return clip(sb.String())
	}

	if len(r.Ingredients) > 0 {
		sb.WriteString(fmt.Sprintf("\n🛒 *Ingredients (%d)*\n", len(r.Ingredients)))
		for _, ing := range r.Ingredients {
			if ing.Measure != "" {
				sb.WriteString(fmt.Sprintf("• %s - %s\n", esc(ing.Name), esc(ing.Measure)))
			} else {
				sb.WriteString("• " + esc(ing.Name) + "\n")
			}
		}
	}

	if steps := r.Steps(); len(steps) > 0 {
		sb.WriteString("\n👩‍🍳 *Instructions*\n")
		for i, step := range steps {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, esc(step)))
		}
	}
	return clip(sb.String())
}

func formatHistory(entries []string) string {
	if len(entries) == 0 {
		return "🕘 No recent searches yet."
	}
	var sb strings.Builder
	sb.WriteString("🕘 *Recent searches*\n\n")
	for i, q := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, esc(q)))
	}
	return sb.String()
}

func formatFavorites(favs []recipe.Recipe) string {
	if len(favs) == 0 {
		return "❤️ No favorites yet. Tap ❤️ on a recipe to save it."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("❤️ *Favorites (%d)*\n\n", len(favs)))
	for i, r := range favs {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, esc(r.Name)))
	}
	return sb.String()
}

// formatShopping renders the list with numbered entries. Items come first,
// then custom entries, matching the numbering used by /shopping check.
func formatShopping(l *shopping.List) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛒 *Shopping List* for %s\n\n", plural(l.RecipeCount, "recipe")))

	n := 0
	for _, item := range l.Items {
		n++
		mark := "⬜"
		if l.Checked[item.Key] {
			mark = "✅"
		}
		sb.WriteString(fmt.Sprintf("%s %d. %s (%s)\n", mark, n, esc(item.Name), esc(strings.Join(item.Measures, ", "))))
	}
	if len(l.Custom) > 0 {
		sb.WriteString("\n*Additional items*\n")
		for _, item := range l.Custom {
			n++
			mark := "⬜"
			if l.Checked[item.ID] {
				mark = "✅"
			}
			sb.WriteString(fmt.Sprintf("%s %d. %s\n", mark, n, esc(item.Text)))
		}
	}
	sb.WriteString("\n/shopping add <item> · /shopping check <n> · /shopping export · /shopping clear")
	return clip(sb.String())
}

func formatStatus(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Searches*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d searches (%d empty, avg %dms)\n", d.Date, d.Searches, d.Empty, d.AvgLatencyMS))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}

func resultsKeyboard(recipes []recipe.Recipe) *tgbotapi.InlineKeyboardMarkup {
	if len(recipes) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, r := range recipes {
		if i == maxResultButtons {
			break
		}
		label := fmt.Sprintf("%d. %s", i+1, r.Name)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "d|"+r.ID),
		))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func historyKeyboard(entries []string) *tgbotapi.InlineKeyboardMarkup {
	if len(entries) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, q := range entries {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 "+q, fmt.Sprintf("h|%d", i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🗑 Clear history", "hc|"),
	))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func recipeKeyboard(r recipe.Recipe, favorite bool) tgbotapi.InlineKeyboardMarkup {
	favLabel := "🤍 Save"
	if favorite {
		favLabel = "❤️ Saved"
	}
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(favLabel, "f|"+r.ID),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "b|"),
		),
	}

	var links []tgbotapi.InlineKeyboardButton
	if id := r.YouTubeID(); id != "" {
		links = append(links, tgbotapi.NewInlineKeyboardButtonURL("▶️ Video", "https://www.youtube.com/watch?v="+id))
	}
	if r.SourceURL != "" {
		links = append(links,
			tgbotapi.NewInlineKeyboardButtonURL("🔗 Source", r.SourceURL),
			tgbotapi.NewInlineKeyboardButtonData("📄 Preview", "p|"+r.ID),
		)
	}
	if len(links) > 0 {
		rows = append(rows, links)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
