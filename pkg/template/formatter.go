package template

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// applyFormatters runs a formatter chain left-to-right over the looked-up
// value. Unknown formatters and unparseable inputs leave the text unchanged
// rather than failing the render.
func applyFormatters(v Value, specs []string) string {
	text := v.Text()
	for _, spec := range specs {
		name, args := parseFormatter(spec)
		switch name {
		case "upper":
			text = strings.ToUpper(text)
		case "lower":
			text = strings.ToLower(text)
		case "title":
			text = cases.Title(language.Und).String(text)
		case "truncate":
			text = truncate(text, args)
		case "date":
			text = formatDate(text, args)
		case "currency":
			text = formatCurrency(text, args)
		case "default":
			if text == "" && len(args) > 0 {
				text = strings.Join(args, ":")
			}
		}
	}
	return text
}

// parseFormatter splits "name:arg1:arg2" or "name:arg1,arg2" into the
// formatter name and its arguments.
func parseFormatter(spec string) (string, []string) {
	segs := strings.Split(strings.TrimSpace(spec), ":")
	name := strings.TrimSpace(segs[0])
	var args []string
	for _, seg := range segs[1:] {
		for part := range strings.SplitSeq(seg, ",") {
			args = append(args, strings.TrimSpace(part))
		}
	}
	return name, args
}

func truncate(text string, args []string) string {
	if len(args) == 0 {
		return text
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

// dateLayouts are tried in order when parsing a date formatter input.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// formatDate renders a parseable timestamp in a locale-appropriate layout.
// Unparseable input is returned unchanged.
func formatDate(text string, args []string) string {
	var t time.Time
	parsed := false
	for _, layout := range dateLayouts {
		if v, err := time.Parse(layout, text); err == nil {
			t = v
			parsed = true
			break
		}
	}
	if !parsed {
		if epoch, err := strconv.ParseInt(text, 10, 64); err == nil && epoch > 0 {
			t = time.Unix(epoch, 0).UTC()
			parsed = true
		}
	}
	if !parsed {
		return text
	}

	layout := "2 January 2006"
	if len(args) > 0 {
		if tag, err := language.Parse(args[0]); err == nil {
			if region, _ := tag.Region(); region.String() == "US" {
				layout = "January 2, 2006"
			}
		}
	}
	return t.Format(layout)
}

// formatCurrency renders a numeric amount with the given ISO currency code
// and locale. Non-numeric amounts and unknown codes pass through unchanged.
func formatCurrency(text string, args []string) string {
	if len(args) == 0 {
		return text
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return text
	}
	unit, err := currency.ParseISO(args[0])
	if err != nil {
		return text
	}
	tag := language.Und
	if len(args) > 1 {
		if parsed, err := language.Parse(args[1]); err == nil {
			tag = parsed
		}
	}
	return message.NewPrinter(tag).Sprint(currency.Symbol(unit.Amount(amount)))
}
