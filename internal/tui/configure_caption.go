package tui

import (
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/hyprcaption/internal/config"
)

// editCaption edits the buffering engine settings
func editCaption(cfg *config.Config) error {
	budget := strconv.Itoa(cfg.Caption.DisplayBudget)
	policy := cfg.Caption.DequeuePolicy
	maxWords := strconv.Itoa(cfg.Caption.MaxWordsPerTick)
	padding := strconv.Itoa(cfg.Caption.LookaheadPadding)
	soft := cfg.Caption.SoftWordLifetime.String()
	hard := cfg.Caption.HardWordLifetime.String()
	context := strconv.Itoa(cfg.Caption.PageContextWords)
	prefix := cfg.Caption.UsePagePrefix
	keepURLs := cfg.Caption.KeepURLs
	capitalize := cfg.Caption.Capitalize

	policyOptions := []huh.Option[string]{
		huh.NewOption("Pagination - replace the whole caption when it fills up", "pagination"),
		huh.NewOption("Scrolling - drop the oldest words one by one", "scrolling"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Display Budget").
				Description("Maximum caption length in characters. VRChat shows 144.").
				Placeholder("144").
				Value(&budget).
				Validate(validatePositiveInt),
			huh.NewSelect[string]().
				Title("Dequeue Policy").
				Options(policyOptions...).
				Value(&policy),
			huh.NewInput().
				Title("Lookahead Padding").
				Description("Room kept free for the sentence still being spoken.").
				Placeholder("24").
				Value(&padding).
				Validate(validateNonNegativeInt),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Soft Word Lifetime").
				Description("A word may leave the caption after this long ('infinite' to disable).").
				Placeholder("5s").
				Value(&soft).
				Validate(validateLifetime),
			huh.NewInput().
				Title("Hard Word Lifetime").
				Description("A word must leave this long after its soft lifetime.").
				Placeholder("16s").
				Value(&hard).
				Validate(validateLifetime),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Max Words Per Update").
				Description("Scrolling only: soft-expired words removed per update. 0 = hard expiry only.").
				Placeholder("10").
				Value(&maxWords).
				Validate(validateNonNegativeInt),
			huh.NewInput().
				Title("Page Context Words").
				Description("Pagination only: words carried over from the previous page.").
				Placeholder("1").
				Value(&context).
				Validate(validateNonNegativeInt),
			huh.NewConfirm().
				Title("Prefix continued pages with '-'?").
				Value(&prefix),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Keep URLs together?").
				Description("Don't split example.com at the dot.").
				Value(&keepURLs),
			huh.NewConfirm().
				Title("Fix capitalization?").
				Description("Capitalize sentence starts and a lone 'i'.").
				Value(&capitalize),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Caption.DisplayBudget = atoi(budget)
	cfg.Caption.DequeuePolicy = policy
	cfg.Caption.MaxWordsPerTick = atoi(maxWords)
	cfg.Caption.LookaheadPadding = atoi(padding)
	cfg.Caption.SoftWordLifetime = parseLifetime(soft)
	cfg.Caption.HardWordLifetime = parseLifetime(hard)
	cfg.Caption.PageContextWords = atoi(context)
	cfg.Caption.UsePagePrefix = prefix
	cfg.Caption.KeepURLs = keepURLs
	cfg.Caption.Capitalize = capitalize

	return nil
}
