package ledger_test

import (
	"strings"
)

const header = "id,posted,type,status,account_id,merchant_id,mcc,transaction_display_name,channel,currency,category_display_name,category_id,transaction_amount,transaction_date"

type row struct {
	account     string
	date        string
	category    string
	amount      string
	description string
}

// ledgerText renders rows in the default column layout.
func ledgerText(rows ...row) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for i, r := range rows {
		fields := make([]string, 14)
		fields[0] = "tx-" + string(rune('a'+i%26))
		fields[4] = r.account
		fields[7] = r.description
		fields[10] = r.category
		fields[12] = r.amount
		fields[13] = r.date
		b.WriteString(strings.Join(fields, ","))
		b.WriteString("\n")
	}
	return b.String()
}

func spend(date, category, amount string) row {
	return row{account: "acc-1", date: date, category: category, amount: amount, description: "purchase"}
}
