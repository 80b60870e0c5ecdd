package report

import (
	"fmt"
	"html"
	"time"
)

// Receipt carries the fields printed on a maintenance payment receipt.
type Receipt struct {
	Community  string
	UnitLabel  string
	Period     string
	Amount     int64
	PaymentRef string
	PaidAt     time.Time
}

func formatRupiah(amount int64) string {
	s := fmt.Sprintf("%d", amount)
	out := ""
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out += "."
		}
		out += string(r)
	}
	return "Rp " + out
}

// ReceiptHTML renders the receipt document handed to Gotenberg.
func ReceiptHTML(r Receipt) string {
	return `<html><head><meta charset="utf-8"><title>Kuitansi Iuran</title>
<style>
body { font-family: sans-serif; margin: 48px; color: #222; }
h1 { font-size: 20px; border-bottom: 2px solid #222; padding-bottom: 8px; }
table { margin-top: 24px; border-collapse: collapse; }
td { padding: 6px 16px 6px 0; }
td:first-child { color: #666; }
.amount { font-size: 18px; font-weight: bold; }
.ref { margin-top: 32px; font-size: 11px; color: #999; }
</style></head><body>
<h1>Kuitansi Pembayaran Iuran</h1>
<table>
<tr><td>Komunitas</td><td>` + html.EscapeString(r.Community) + `</td></tr>
<tr><td>Unit</td><td>` + html.EscapeString(r.UnitLabel) + `</td></tr>
<tr><td>Periode</td><td>` + html.EscapeString(r.Period) + `</td></tr>
<tr><td>Jumlah</td><td class="amount">` + formatRupiah(r.Amount) + `</td></tr>
<tr><td>Dibayar pada</td><td>` + r.PaidAt.Format("2 January 2006 15:04") + `</td></tr>
</table>
<p class="ref">Referensi pembayaran: ` + html.EscapeString(r.PaymentRef) + `</p>
</body></html>`
}
