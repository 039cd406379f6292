// Package assistant answers chat messages about the user's finances. It is a
// fixed keyword dispatcher over precomputed aggregates: no state, no learning.
package assistant

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"finhealth-server/src/analytics"
	"finhealth-server/src/models"

	"github.com/shopspring/decimal"
)

const (
	IntentCategory = "category"
	IntentBudget   = "budget"
	IntentGoal     = "goal"
	IntentSavings  = "savings"
	IntentIncome   = "income"
	IntentSpending = "spending"
	IntentHealth   = "health"
	IntentTips     = "tips"
	IntentGreeting = "greeting"
	IntentHelp     = "help"
)

// Snapshot is everything a reply may quote.
type Snapshot struct {
	Name     string
	Currency string
	Summary  models.Summary
	Budgets  []models.BudgetStatus
	Goals    []models.Goal
	Health   models.HealthScore
}

type Response struct {
	Intent string `json:"intent"`
	Reply  string `json:"reply"`
}

type intent struct {
	name     string
	prefixes []string // a word starting with any of these matches
	words    []string // whole-word matches only
	reply    func(Snapshot) string
}

// Checked in order; the first intent that matches wins. Category questions
// are handled before these because they depend on the snapshot.
var intents = []intent{
	{name: IntentBudget, prefixes: []string{"budget", "limit", "overspen"}, reply: budgetReply},
	{name: IntentGoal, prefixes: []string{"goal", "target"}, reply: goalReply},
	{name: IntentSavings, prefixes: []string{"save", "saving"}, words: []string{"net"}, reply: savingsReply},
	{name: IntentIncome, prefixes: []string{"income", "earn", "salary"}, reply: incomeReply},
	{name: IntentSpending, prefixes: []string{"spend", "spent", "expense", "cost"}, reply: spendingReply},
	{name: IntentHealth, prefixes: []string{"health", "score", "doing"}, reply: healthReply},
	{name: IntentTips, prefixes: []string{"tip", "advice", "advise", "suggest", "improve"}, reply: tipsReply},
	{name: IntentGreeting, words: []string{"hi", "hello", "hey", "hiya", "morning", "evening"}, reply: greetingReply},
}

// Reply picks the intent for message and renders its template.
func Reply(message string, snap Snapshot) Response {
	text := normalize(message)
	words := strings.Fields(text)

	if cat, ok := matchCategory(text, snap.Summary); ok {
		return Response{Intent: IntentCategory, Reply: categoryReply(snap, cat)}
	}
	for _, in := range intents {
		if in.matches(words) {
			return Response{Intent: in.name, Reply: in.reply(snap)}
		}
	}
	return Response{Intent: IntentHelp, Reply: helpReply}
}

func (in intent) matches(words []string) bool {
	for _, w := range words {
		for _, p := range in.prefixes {
			if strings.HasPrefix(w, p) {
				return true
			}
		}
		for _, exact := range in.words {
			if w == exact {
				return true
			}
		}
	}
	return false
}

func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return " " + strings.Join(strings.Fields(s), " ") + " "
}

// matchCategory finds a category of this month's spending named in text.
// Longer names are tried first so "fast food" beats "food".
func matchCategory(text string, summary models.Summary) (string, bool) {
	names := make([]string, 0, len(summary.ExpensesByCategory))
	for name := range summary.ExpensesByCategory {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		needle := normalize(name)
		if strings.TrimSpace(needle) == "" {
			continue
		}
		if strings.Contains(text, needle) {
			return name, true
		}
	}
	return "", false
}

func money(currency string, amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	switch strings.ToUpper(currency) {
	case "", "USD":
		return sign + "$" + amount.StringFixed(2)
	case "EUR":
		return sign + "€" + amount.StringFixed(2)
	case "GBP":
		return sign + "£" + amount.StringFixed(2)
	default:
		return sign + amount.StringFixed(2) + " " + strings.ToUpper(currency)
	}
}

func categoryReply(snap Snapshot, category string) string {
	spent := snap.Summary.ExpensesByCategory[category]
	reply := fmt.Sprintf("You've spent %s on %s this month", money(snap.Currency, spent), category)
	if snap.Summary.TotalExpenses.IsPositive() {
		share := spent.Div(snap.Summary.TotalExpenses).Mul(decimal.NewFromInt(100)).Round(1)
		reply += fmt.Sprintf(", which is %s%% of your total spending", share.StringFixed(1))
	}
	reply += "."
	for _, b := range snap.Budgets {
		if b.Category != category {
			continue
		}
		if analytics.Exceeded(b) {
			reply += fmt.Sprintf(" That's %s over your %s budget.", money(snap.Currency, b.Spent.Sub(b.Limit)), b.Period)
		} else {
			reply += fmt.Sprintf(" You have %s left in your %s budget.", money(snap.Currency, b.Remaining), b.Period)
		}
		break
	}
	return reply
}

func budgetReply(snap Snapshot) string {
	if len(snap.Budgets) == 0 {
		return "You haven't set any budgets yet. Create one per category to keep your spending in check."
	}
	var over []string
	for _, b := range snap.Budgets {
		if analytics.Exceeded(b) {
			over = append(over, fmt.Sprintf("%s (%s spent of %s)", b.Category, money(snap.Currency, b.Spent), money(snap.Currency, b.Limit)))
		}
	}
	if len(over) == 0 {
		return fmt.Sprintf("All %d of your budgets are on track.", len(snap.Budgets))
	}
	return fmt.Sprintf("You're over budget in %d of %d categories: %s.", len(over), len(snap.Budgets), strings.Join(over, "; "))
}

func goalReply(snap Snapshot) string {
	if len(snap.Goals) == 0 {
		return "You don't have any savings goals yet. Setting a target with a deadline is a great way to start."
	}
	parts := make([]string, 0, len(snap.Goals))
	for _, g := range snap.Goals {
		parts = append(parts, fmt.Sprintf("%s is %s%% complete (%s of %s, due %s)",
			g.Name, g.Progress().StringFixed(1), money(snap.Currency, g.Current), money(snap.Currency, g.Target), g.Deadline.Format("2006-01-02")))
	}
	return "Here's where your goals stand: " + strings.Join(parts, "; ") + "."
}

func savingsReply(snap Snapshot) string {
	s := snap.Summary
	if s.NetSavings.IsNegative() {
		return fmt.Sprintf("This month you've spent %s more than you earned. Try trimming your largest category.", money(snap.Currency, s.NetSavings.Abs()))
	}
	return fmt.Sprintf("You've saved %s this month, a savings rate of %s%%.", money(snap.Currency, s.NetSavings), s.SavingsRate.StringFixed(1))
}

func incomeReply(snap Snapshot) string {
	if snap.Summary.TotalIncome.IsZero() {
		return "You haven't recorded any income this month."
	}
	return fmt.Sprintf("Your total income this month is %s.", money(snap.Currency, snap.Summary.TotalIncome))
}

func spendingReply(snap Snapshot) string {
	s := snap.Summary
	if s.TotalExpenses.IsZero() {
		return "You haven't recorded any expenses this month."
	}
	top, topAmount := "", decimal.Zero
	for name, amount := range s.ExpensesByCategory {
		if amount.GreaterThan(topAmount) || (amount.Equal(topAmount) && name < top) {
			top, topAmount = name, amount
		}
	}
	return fmt.Sprintf("You've spent %s this month. Your biggest category is %s at %s.",
		money(snap.Currency, s.TotalExpenses), top, money(snap.Currency, topAmount))
}

func healthReply(snap Snapshot) string {
	return fmt.Sprintf("Your financial health score is %d/100 (%s).", snap.Health.Score, snap.Health.Grade)
}

func tipsReply(snap Snapshot) string {
	if len(snap.Health.Tips) == 0 {
		return "Keep tracking every expense and review your budgets weekly."
	}
	return strings.Join(snap.Health.Tips, " ")
}

func greetingReply(snap Snapshot) string {
	if snap.Name != "" {
		return fmt.Sprintf("Hi %s! Ask me about your spending, income, savings, budgets or goals.", snap.Name)
	}
	return "Hi! Ask me about your spending, income, savings, budgets or goals."
}

const helpReply = "I can tell you about your spending, income, savings, budgets, goals, a specific category, " +
	"or your financial health score. Try \"How much did I spend on food?\""
