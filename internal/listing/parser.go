package listing

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// The pending-orders grid arrives in one of three shapes depending on how far
// upstream rendering and sanitization got: a PrimeFaces partial-response
// envelope, a raw HTML fragment with intact rows, or text already stripped of
// row structure. Strategies are tried in that order; each returns nothing
// rather than failing, falling through to the next.
var (
	gridUpdatePattern = regexp.MustCompile(
		`(?s)<update[^>]*id="abas:formRecebidas:tblRecebidas"[^>]*>\s*<!\[CDATA\[(.*?)]]>`)
	orderNumberPattern = regexp.MustCompile(`\b\d{16,18}\b`)
)

// ParseOrderIDs extracts order numbers from a listing response body. It never
// fails; an unrecognizable body yields an empty result. Duplicates are
// removed preserving first-seen order.
func ParseOrderIDs(body string) []string {
	if strings.Contains(body, "<partial-response") {
		return parsePartialResponse(body)
	}
	return parseFragment(body)
}

func parsePartialResponse(xml string) []string {
	if match := gridUpdatePattern.FindStringSubmatch(xml); match != nil {
		return parseFragment(match[1])
	}
	return nil
}

func parseFragment(fragment string) []string {
	if strings.Contains(fragment, "<tr") {
		if ids := parseRows(fragment); len(ids) > 0 {
			return ids
		}
		// Rows present but nothing usable; fall through to the token scan.
	}
	return scanTokens(fragment)
}

// parseRows treats the fragment as grid rows: the order number lives in the
// 4th cell of every row carrying a data-ri index. Short rows and blank cells
// are skipped.
func parseRows(fragment string) []string {
	doc, err := goquery.NewDocumentFromReader(
		strings.NewReader("<table>" + fragment + "</table>"))
	if err != nil {
		return nil
	}

	var ids []string
	seen := make(map[string]struct{})

	doc.Find("tr[data-ri]").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}
		id := strings.TrimSpace(cells.Eq(3).Text())
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	})

	return ids
}

// scanTokens falls back to scanning raw text for order-number shaped tokens
// (16 to 18 digits) when the row structure was sanitized away.
func scanTokens(text string) []string {
	var ids []string
	seen := make(map[string]struct{})

	for _, id := range orderNumberPattern.FindAllString(text, -1) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}
