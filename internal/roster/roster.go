// Package roster handles bulk student intake: XLSX roster parsing and
// deterministic display-email derivation.
package roster

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultEmailDomain is appended to derived addresses. These are display
// conveniences, not deliverable mailboxes.
const DefaultEmailDomain = "school.edu"

var emailFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// DeriveEmail builds a display email from a student name: diacritics
// folded, lowercased, whitespace collapsed to dots.
func DeriveEmail(name, domain string) string {
	if domain == "" {
		domain = DefaultEmailDomain
	}
	folded, _, err := transform.String(emailFolder, name)
	if err != nil {
		folded = name
	}
	local := strings.ToLower(strings.Join(strings.Fields(folded), "."))
	return local + "@" + domain
}

// ParseNames reads student names from the first column of the first
// sheet of an XLSX workbook. Blank cells and a leading "name" header row
// are skipped.
func ParseNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var names []string
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		if i == 0 && strings.EqualFold(name, "name") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
