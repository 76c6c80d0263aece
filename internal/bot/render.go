package bot

import (
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"lavka.org/internal/auth"
)

// pageSize is one: the console walks registrations card by card.
const pageSize = 1

// renderPendingPage builds the message text and inline keyboard for one
// page of the pending queue. Pure function so it can be tested without a
// Telegram connection.
func renderPendingPage(accounts []*auth.Account, total, page int) (string, *telego.InlineKeyboardMarkup) {
	if total == 0 || len(accounts) == 0 {
		return "No pending registrations 🎉", nil
	}

	account := accounts[0]
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pending registrations: %d\n\n", total)
	name := account.Name
	if account.Surname != "" {
		name += " " + account.Surname
	}
	fmt.Fprintf(&sb, "👤 %s\n", name)
	fmt.Fprintf(&sb, "✉️ %s\n", account.Email)
	if account.Phone != "" {
		fmt.Fprintf(&sb, "📞 %s\n", account.Phone)
	}
	fmt.Fprintf(&sb, "\n%d of %d", page+1, total)

	rows := []telego.InlineKeyboardButton{
		tu.InlineKeyboardButton("✅ Approve").WithCallbackData("approve " + account.ID),
		tu.InlineKeyboardButton("❌ Reject").WithCallbackData("reject " + account.ID),
	}

	var nav []telego.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tu.InlineKeyboardButton("⬅️ Prev").WithCallbackData(fmt.Sprintf("page %d", page-1)))
	}
	if (page+1)*pageSize < total {
		nav = append(nav, tu.InlineKeyboardButton("➡️ Next").WithCallbackData(fmt.Sprintf("page %d", page+1)))
	}

	keyboardRows := []([]telego.InlineKeyboardButton){tu.InlineKeyboardRow(rows...)}
	if len(nav) > 0 {
		keyboardRows = append(keyboardRows, tu.InlineKeyboardRow(nav...))
	}
	keyboardRows = append(keyboardRows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("✅ Approve all").WithCallbackData("approve_all"),
		tu.InlineKeyboardButton("❌ Reject all").WithCallbackData("reject_all"),
	))

	return sb.String(), tu.InlineKeyboard(keyboardRows...)
}
