package telegram

import (
	"fmt"
	"strings"

	"diet-planner/internal/metrics"
	"diet-planner/internal/planner"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func formatReportMarkdown(report planner.Report) string {
	if report.Status != planner.StatusSuccess {
		return fmt.Sprintf("❌ *No plan:* %s", escapeMarkdown(report.Message))
	}

	var sb strings.Builder
	sb.WriteString("📅 *Daily Meal Plan*\n")
	if t := report.Targets; t != nil {
		sb.WriteString(fmt.Sprintf("_Target: %d kcal, %d g protein_\n", t.Calories, t.Protein))
	}
	sb.WriteString("\n")

	for _, slot := range planner.Slots {
		sb.WriteString(fmt.Sprintf("*%s*\n", slot))
		for _, f := range report.MealPlan[slot] {
			sb.WriteString(fmt.Sprintf("• %s: %.1f g (₹%.2f)\n", escapeMarkdown(f.Name), f.Quantity, f.Cost))
		}
		sb.WriteString("\n")
	}

	if s := report.NutritionSummary; s != nil {
		sb.WriteString("🧮 *Nutrition*\n")
		sb.WriteString(fmt.Sprintf("%.1f kcal · %.1f g protein · %.1f g fat\n", s.Calories, s.Protein, s.Fat))
		sb.WriteString(fmt.Sprintf("%.1f g carbs · %.1f g fiber · %.1f mg iron\n\n", s.Carbs, s.Fiber, s.Iron))
	}
	sb.WriteString(fmt.Sprintf("💰 *Total cost:* ₹%.2f\n", report.TotalCost))

	// Every selected food shares the same ranking; show it once.
	if len(report.Selected) > 0 {
		if alts := report.Alternatives[report.Selected[0].Name]; len(alts) > 0 {
			names := make([]string, len(alts))
			for i, a := range alts {
				names[i] = fmt.Sprintf("%s (%.3f g/₹)", escapeMarkdown(a.Name), a.CostEffectiveness)
			}
			sb.WriteString(fmt.Sprintf("\n💡 *Budget protein swaps:* %s\n", strings.Join(names, ", ")))
		}
	}

	return sb.String()
}

func formatFoods(foods []string) string {
	if len(foods) == 0 {
		return "_No foods loaded._"
	}
	escaped := make([]string, len(foods))
	for i, f := range foods {
		escaped[i] = escapeMarkdown(f)
	}
	return fmt.Sprintf("🛒 *Available foods (%d)*\n\n%s", len(foods), strings.Join(escaped, ", "))
}

func formatMetrics(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Solves*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d plans (%d ok, %d infeasible), avg %.0f ms\n",
			d.Date, d.Total, d.Successes, d.Infeasible, d.AvgLatencyMS))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Database: %s\n", health.DatabaseSize))
	return sb.String()
}
