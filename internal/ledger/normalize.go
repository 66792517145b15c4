package ledger

import (
	"context"

	"expenselog/internal/core"
	"expenselog/internal/log"
)

// NormalizeOptions controls a normalization run.
type NormalizeOptions struct {
	// Atomic applies every rename in one transaction. Otherwise each category
	// commits on its own and a failed run can simply be repeated.
	Atomic bool
	// DryRun plans renames without writing them.
	DryRun bool
	Logger *log.Logger
}

// RenameResult is one category rewrite and the number of rows it touched.
type RenameResult struct {
	core.CategoryRename
	Rows int64
}

type NormalizeReport struct {
	Scanned int
	Renames []RenameResult
	// Blank lists stored categories that are empty once trimmed. They are
	// left untouched since there is no category to rewrite them to.
	Blank []string
}

// PlanRenames returns the renames needed to bring categories to canonical
// form, and the blank categories that cannot be renamed. Already canonical
// values are skipped.
func PlanRenames(categories []string) (renames []core.CategoryRename, blank []string) {
	for _, c := range categories {
		fixed := core.CanonicalCategory(c)
		switch {
		case fixed == "":
			blank = append(blank, c)
		case fixed != c:
			renames = append(renames, core.CategoryRename{From: c, To: fixed})
		}
	}
	return renames, blank
}

// NormalizeCategories rewrites every stored category that is not in
// canonical form. Running it again after success changes nothing.
func NormalizeCategories(ctx context.Context, repo Repository, opts NormalizeOptions) (NormalizeReport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentNormalize)

	categories, err := repo.Categories(ctx)
	if err != nil {
		return NormalizeReport{}, err
	}

	renames, blank := PlanRenames(categories)
	report := NormalizeReport{Scanned: len(categories), Blank: blank}
	if len(blank) > 0 {
		logger.WarnContext(ctx, "Blank categories left as they are", log.FieldCount, len(blank))
	}

	if opts.DryRun {
		for _, rn := range renames {
			report.Renames = append(report.Renames, RenameResult{CategoryRename: rn})
		}
		return report, nil
	}

	if opts.Atomic {
		if len(renames) == 0 {
			return report, nil
		}
		counts, err := repo.RenameCategories(ctx, renames)
		if err != nil {
			return report, err
		}
		for i, rn := range renames {
			report.Renames = append(report.Renames, RenameResult{CategoryRename: rn, Rows: counts[i]})
		}
		logger.InfoContext(ctx, "Categories normalized", log.FieldCount, len(renames), "atomic", true)
		return report, nil
	}

	for _, rn := range renames {
		n, err := repo.RenameCategory(ctx, rn)
		if err != nil {
			logger.ErrorContext(ctx, "Category rename failed",
				"from", rn.From, "to", rn.To, log.FieldError, err)
			return report, err
		}
		report.Renames = append(report.Renames, RenameResult{CategoryRename: rn, Rows: n})
	}
	logger.InfoContext(ctx, "Categories normalized", log.FieldCount, len(renames), "atomic", false)
	return report, nil
}
