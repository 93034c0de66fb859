package reports

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/models/reports/layout"
	"github.com/shopspring/decimal"
)

// rocEpochOffset converts a Gregorian year to the Minguo (ROC) calendar.
const rocEpochOffset = 1911

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006/1/2",
}

// LocalDate is a date split into ROC year, month and day strings.
type LocalDate struct {
	Year  string
	Month string
	Day   string
}

var blankDate = LocalDate{Year: "    ", Month: "  ", Day: "  "}

// SplitROCDate parses an ISO-like date. Unparsable input yields blank
// placeholders so a form prints with empty slots.
func SplitROCDate(s string) LocalDate {
	s = strings.TrimSpace(s)
	if s == "" {
		return blankDate
	}
	for _, l := range dateLayouts {
		t, err := time.Parse(l, s)
		if err != nil {
			continue
		}
		return LocalDate{
			Year:  strconv.Itoa(t.Year() - rocEpochOffset),
			Month: fmt.Sprintf("%02d", int(t.Month())),
			Day:   fmt.Sprintf("%02d", t.Day()),
		}
	}
	return blankDate
}

// FormatNumber prints a quantity with thousands separators and between two
// and four decimals. Empty or zero input prints "0"; text that is not a
// number is returned trimmed.
func FormatNumber(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "0"
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return s
	}
	return formatDecimal(d)
}

// FormatFloat is FormatNumber for values already held as numbers.
func FormatFloat(f float64) string {
	return formatDecimal(decimal.NewFromFloat(f))
}

func formatDecimal(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	s := d.Round(4).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")
	for len(frac) < 2 {
		frac += "0"
	}
	out := groupThousands(intPart) + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// EmissionTotal sums the six category emissions.
func EmissionTotal(e models.Emissions) decimal.Decimal {
	total := decimal.Zero
	for _, v := range e.Categories() {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}

// Percent returns value as a percentage of total with two decimals.
// A zero total gives "0.00".
func Percent(value float64, total decimal.Decimal) string {
	if total.IsZero() {
		return "0.00"
	}
	return decimal.NewFromFloat(value).Div(total).Mul(decimal.NewFromInt(100)).StringFixed(2)
}

var scopeLabels = map[string]string{
	"cat1": "類別1",
	"cat2": "類別2",
	"cat3": "類別3",
	"cat4": "類別4",
	"cat5": "類別5",
	"cat6": "類別6",
}

// ScopesText renders category keys as their labels joined with "、".
func ScopesText(scopes []string) string {
	labels := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if l, ok := scopeLabels[s]; ok {
			labels = append(labels, l)
			continue
		}
		labels = append(labels, s)
	}
	return strings.Join(labels, "、")
}

const co2e = "CO2e"

// CO2eRuns wraps the unit CO2e between prefix and suffix with a subscript 2.
func CO2eRuns(prefix, suffix string) []layout.Run {
	runs := []layout.Run{{Text: prefix}}
	runs = append(runs, co2eUnit(0, false)...)
	if suffix != "" {
		runs = append(runs, layout.Run{Text: suffix})
	}
	return runs
}

// SubscriptCO2e splits text on every CO2e so the 2 prints as a subscript.
func SubscriptCO2e(text string, size float64, bold bool) []layout.Run {
	parts := strings.Split(text, co2e)
	var runs []layout.Run
	for i, p := range parts {
		if p != "" {
			runs = append(runs, layout.Run{Text: p, Size: size, Bold: bold})
		}
		if i < len(parts)-1 {
			runs = append(runs, co2eUnit(size, bold)...)
		}
	}
	return runs
}

func co2eUnit(size float64, bold bool) []layout.Run {
	return []layout.Run{
		{Text: "CO", Size: size, Bold: bold},
		{Text: "2", Size: size, Bold: bold, Subscript: true},
		{Text: "e", Size: size, Bold: bold},
	}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
