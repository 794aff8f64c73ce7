package ui

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"vmcp/internal/domain"
	"vmcp/internal/storage"
)

// FailureViewer displays the last run's failures in an interactive TUI
type FailureViewer struct {
	store storage.Storage
}

// NewFailureViewer creates a FailureViewer
func NewFailureViewer(store storage.Storage) *FailureViewer {
	return &FailureViewer{store: store}
}

// View renders the failure list with a detail pane. Failures can be marked
// resolved with 'r'; the mark is persisted back to the last-run file.
func (v *FailureViewer) View(results *domain.LastRunOutput) error {
	if len(results.Failures) == 0 {
		color.Green("✓ No test failures in the last run")
		return nil
	}

	resolved := make(map[int]bool)
	for i, failure := range results.Failures {
		if failure.Resolved {
			resolved[i] = true
		}
	}

	saveResolved := func() error {
		for i := range results.Failures {
			results.Failures[i].Resolved = resolved[i]
		}
		return v.store.Save(results)
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	list.SetBorder(true).SetTitle(fmt.Sprintf(" Failures (%d) ", len(results.Failures)))
	list.SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	itemText := func(index int) string {
		failure := results.Failures[index]
		name := failure.TestName
		if name == "" {
			name = fmt.Sprintf("Failure %d", index+1)
		}
		if resolved[index] {
			return fmt.Sprintf("[gray]✓ %d. %s[white]", index+1, name)
		}
		return fmt.Sprintf("[yellow]%d.[white] %s", index+1, name)
	}
	for i := range results.Failures {
		list.AddItem(itemText(i), "", 0, nil)
	}

	details := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)
	details.SetBorder(true).SetTitle(" Details ")

	showDetails := func(index int) {
		if index < 0 || index >= len(results.Failures) {
			return
		}
		failure := results.Failures[index]
		details.SetText(fmt.Sprintf(
			"[yellow]Test:[white]  %s\n[yellow]File:[white]  %s\n[yellow]Type:[white]  %s\n\n%s",
			failure.TestName, failure.FilePath, failure.ErrorType,
			tview.Escape(failure.Message)))
		details.ScrollToBeginning()
	}
	list.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		showDetails(index)
	})
	showDetails(0)

	header := tview.NewTextView().
		SetDynamicColors(true).
		SetText(fmt.Sprintf(
			"[cyan]%s[white]  %d failed of %d   [gray](r: toggle resolved, q: quit)",
			results.Meta.Command, results.Meta.Failed, results.Meta.TotalTests))

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(tview.NewFlex().
			AddItem(list, 0, 1, true).
			AddItem(details, 0, 2, false), 0, 1, true)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Rune() == 'q' || event.Key() == tcell.KeyEscape:
			app.Stop()
			return nil
		case event.Rune() == 'r':
			index := list.GetCurrentItem()
			resolved[index] = !resolved[index]
			list.SetItemText(index, itemText(index), "")
			saveResolved()
			return nil
		}
		return event
	})

	if err := app.SetRoot(layout, true).Run(); err != nil {
		return fmt.Errorf("failure viewer: %w", err)
	}
	return saveResolved()
}
