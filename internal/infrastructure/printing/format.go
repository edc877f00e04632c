package printing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	idPrinter = message.NewPrinter(language.Indonesian)
	idTitle   = cases.Title(language.Indonesian)
)

var months = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var weekdays = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

// FormatQuantity renders a quantity with Indonesian separators and no
// trailing zeros: 1.250 or 2,5.
func FormatQuantity(d decimal.Decimal) string {
	f, _ := d.Float64()
	return idPrinter.Sprint(number.Decimal(f, number.MaxFractionDigits(4)))
}

// FormatRupiah renders an amount as "Rp 1.250.000,00".
func FormatRupiah(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return "Rp " + idPrinter.Sprint(number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatDate renders "15 Oktober 2026".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d %s %d", t.Day(), months[t.Month()-1], t.Year())
}

// FormatLongDate renders "Kamis, 15 Oktober 2026".
func FormatLongDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return weekdays[t.Weekday()] + ", " + FormatDate(t)
}

// Title capitalises each word the Indonesian way.
func Title(s string) string {
	return idTitle.String(strings.ToLower(s))
}

var ones = [...]string{
	"", "satu", "dua", "tiga", "empat", "lima", "enam", "tujuh", "delapan", "sembilan",
	"sepuluh", "sebelas",
}

// Terbilang spells a whole amount in Indonesian words, as written under
// totals on official documents: 1250 gives "seribu dua ratus lima puluh".
func Terbilang(n int64) string {
	if n == 0 {
		return "nol"
	}
	if n < 0 {
		return "minus " + Terbilang(-n)
	}
	return strings.Join(strings.Fields(spell(n)), " ")
}

func spell(n int64) string {
	switch {
	case n < 12:
		return ones[n]
	case n < 20:
		return spell(n-10) + " belas"
	case n < 100:
		return spell(n/10) + " puluh " + spell(n%10)
	case n < 200:
		return "seratus " + spell(n-100)
	case n < 1000:
		return spell(n/100) + " ratus " + spell(n%100)
	case n < 2000:
		return "seribu " + spell(n-1000)
	case n < 1_000_000:
		return spell(n/1000) + " ribu " + spell(n%1000)
	case n < 1_000_000_000:
		return spell(n/1_000_000) + " juta " + spell(n%1_000_000)
	case n < 1_000_000_000_000:
		return spell(n/1_000_000_000) + " miliar " + spell(n%1_000_000_000)
	default:
		return spell(n/1_000_000_000_000) + " triliun " + spell(n%1_000_000_000_000)
	}
}
