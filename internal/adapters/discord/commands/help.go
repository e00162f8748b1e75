package commands

import (
	"fmt"

	"bot-dispatch/internal/adapters/discord/formatting"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultHelpPageSize = 10

type HelpPage struct {
	Title string
	Lines []string
}

// HelpPages builds the help listing: one page per group, then the remaining
// commands split into pages of pageSize, each opened by a section header.
func (m *Manager) HelpPages(pageSize int) []HelpPage {
	if pageSize <= 0 {
		pageSize = DefaultHelpPageSize
	}

	title := cases.Title(language.English)
	var pages []HelpPage
	var general []string

	for _, e := range m.Entries() {
		group, ok := e.(*Group)
		if !ok {
			general = append(general, helpLine(e.Name(), e.Description()))
			continue
		}

		page := HelpPage{Title: title.String(group.Name())}
		for _, child := range group.Children() {
			page.Lines = append(page.Lines, helpLine(group.Name()+" "+child.Name(), child.Description()))
		}
		pages = append(pages, page)
	}

	for start := 0; start < len(general); start += pageSize {
		end := min(start+pageSize, len(general))
		pages = append(pages, HelpPage{
			Title: formatting.MsgGeneralCommands,
			Lines: general[start:end],
		})
	}

	return pages
}

func helpLine(path, description string) string {
	return fmt.Sprintf("`/%s` - %s", path, description)
}
