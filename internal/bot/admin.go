package bot

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/models"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/pkg/utils"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/store"
)

// adminCommand is one entry in the admin grammar. Commands are matched
// in table order against the lowercased message; exact entries must
// match the whole message, the rest are verb prefixes.
type adminCommand struct {
	verb  string
	exact bool
	run   func(*inbound)
}

func (b *Bot) adminCommands() []adminCommand {
	return []adminCommand{
		{verb: "admin cmd", exact: true, run: b.adminMenu},
		{verb: "set payhero ", run: b.adminSetPayHero},
		{verb: "ban ", run: b.adminBan},
		{verb: "unban ", run: b.adminUnban},
		{verb: "set withdrawal ", run: b.adminSetWithdrawal},
		{verb: "update ", run: b.adminUpdateOrder},
		{verb: "set payment ", run: b.adminSetPayment},
		{verb: "add data ", run: func(in *inbound) { b.adminAddPackage(in, store.CatalogData) }},
		{verb: "remove data ", run: func(in *inbound) { b.adminRemovePackage(in, store.CatalogData) }},
		{verb: "edit data ", run: func(in *inbound) { b.adminEditPackage(in, store.CatalogData) }},
		{verb: "add sms ", run: func(in *inbound) { b.adminAddPackage(in, store.CatalogSMS) }},
		{verb: "remove sms ", run: func(in *inbound) { b.adminRemovePackage(in, store.CatalogSMS) }},
		{verb: "edit sms ", run: func(in *inbound) { b.adminEditPackage(in, store.CatalogSMS) }},
		{verb: "referrals all", exact: true, run: b.adminReferralsAll},
		{verb: "withdraw update ", run: b.adminUpdateWithdrawal},
		{verb: "search ", run: b.adminSearchOrder},
		{verb: "earnings add ", run: func(in *inbound) { b.adminAdjustEarnings(in, false) }},
		{verb: "earnings deduct ", run: func(in *inbound) { b.adminAdjustEarnings(in, true) }},
	}
}

// matchAdminCommand resolves the message against the admin grammar and
// stashes the match. A miss lets the message fall through to the
// ordinary user routing, so the admin can still shop and navigate.
func (b *Bot) matchAdminCommand(in *inbound) bool {
	for _, cmd := range b.adminCommands() {
		if cmd.exact && in.lower == cmd.verb {
			in.admin = cmd.run
			return true
		}
		if !cmd.exact && strings.HasPrefix(in.lower, cmd.verb) {
			in.admin = cmd.run
			return true
		}
	}
	return false
}

func (b *Bot) runAdminCommand(in *inbound) {
	in.admin(in)
}

func (b *Bot) adminMenu(in *inbound) {
	b.send(in.from, `📜 *Admin Menu* 📜
1) update <ORDER_ID> <STATUS> <REMARK>
2) set payment <mpesa_number> "<Name>"
3) add data <subcat> "<name>" <price> "<validity>"
4) remove data <subcat> <id>
5) edit data <subcat> <id> <newprice>
6) add sms <subcat> "<name>" <price> "<validity>"
7) remove sms <subcat> <id>
8) edit sms <subcat> <id> <newprice>
9) set withdrawal <min> <max>
10) search <ORDER_ID>
11) referrals all
12) withdraw update <ref_code> <wd_id> <STATUS> <remarks>
13) earnings add <ref_code> <amount> <remarks>
14) earnings deduct <ref_code> <amount> <remarks>
15) ban <userID>
16) unban <userID>
17) set payhero <channel_id> <base64Auth>`)
}

func (b *Bot) adminSetPayHero(in *inbound) {
	parts := strings.Fields(in.text)
	if len(parts) < 4 {
		b.send(in.from, "❌ Usage: set payhero <channel_id> <base64Auth>")
		return
	}
	chID := utils.ParseInt(parts[2], 0)
	if chID <= 0 {
		b.send(in.from, "❌ channel_id must be a positive number.")
		return
	}
	auth := parts[3]
	b.stores.Settings.SetPayHero(chID, auth)
	b.logger.Info("payhero config updated", zap.Int("channel_id", chID))
	b.send(in.from, fmt.Sprintf("✅ Updated STK push config:\nchannel_id = %d\nAuthorization = Basic %s", chID, auth))
}

func (b *Bot) adminBan(in *inbound) {
	parts := strings.Fields(in.text)
	if len(parts) != 2 {
		b.send(in.from, "❌ Usage: ban <userID>")
		return
	}
	b.stores.Bans.Ban(parts[1])
	b.send(in.from, fmt.Sprintf("✅ Banned user %s.", parts[1]))
}

func (b *Bot) adminUnban(in *inbound) {
	parts := strings.Fields(in.text)
	if len(parts) != 2 {
		b.send(in.from, "❌ Usage: unban <userID>")
		return
	}
	b.stores.Bans.Unban(parts[1])
	b.send(in.from, fmt.Sprintf("✅ Unbanned user %s.", parts[1]))
}

func (b *Bot) adminSetWithdrawal(in *inbound) {
	parts := strings.Fields(in.text)
	if len(parts) != 4 {
		b.send(in.from, "❌ Usage: set withdrawal <min> <max>")
		return
	}
	min, okMin := utils.ParseAmount(parts[2])
	max, okMax := utils.ParseAmount(parts[3])
	if !okMin || !okMax || max <= min {
		b.send(in.from, "❌ Provide valid numbers (max > min > 0).")
		return
	}
	b.stores.Settings.SetWithdrawalLimits(min, max)
	b.send(in.from, fmt.Sprintf("✅ Withdrawal limits updated: min = KSH %s, max = KSH %s",
		utils.FormatAmount(min), utils.FormatAmount(max)))
}

// adminUpdateOrder sets an order's status and remark and drives the
// status-specific user notification, including the referral bonus
// trigger on completion.
func (b *Bot) adminUpdateOrder(in *inbound) {
	parts := strings.Fields(in.text)
	if len(parts) < 4 {
		b.send(in.from, "❌ Usage: update <ORDER_ID> <STATUS> <REMARK>")
		return
	}
	orderID := parts[1]
	status := strings.ToUpper(parts[2])
	remark := strings.Join(parts[3:], " ")

	order, ok := b.stores.Orders.SetStatus(orderID, status, remark)
	if !ok {
		b.send(in.from, fmt.Sprintf("❌ Order %s not found.", orderID))
		return
	}

	var extra string
	switch status {
	case models.OrderConfirmed:
		extra = "✅ Payment confirmed! We are processing your order."
	case models.OrderCompleted:
		extra = "🎉 Your order has been completed! Thank you for choosing FYS PROPERTY."
		b.creditReferral(order)
	case models.OrderCancelled:
		extra = fmt.Sprintf("😔 Your order was cancelled.\nOrder ID: %s\nPackage: %s\nPlaced at: %s\nRemark: %s\nPlease contact support if needed.",
			orderID, order.Package, utils.FormatKenyaTime(order.CreatedAt), remark)
	case models.OrderRefunded:
		extra = "💰 Your order was refunded. Check your M-Pesa balance."
	default:
		extra = "Your order status has been updated."
	}

	b.send(order.Customer, fmt.Sprintf("🔔 *Order Update*\nYour order *%s* is now *%s*.\n%s\nReply \"0\" or \"00\" for menus.", orderID, status, extra))
	b.send(in.from, fmt.Sprintf("✅ Order %s updated to %s with remark: \"%s\".", orderID, status, remark))
}

func (b *Bot) adminSetPayment(in *inbound) {
	parts := utils.SplitQuoted(strings.Fields(in.text)[2:])
	if len(parts) < 2 {
		b.send(in.from, "❌ Usage: set payment <mpesa_number> \"<Name>\"")
		return
	}
	info := fmt.Sprintf("%s (%s)", parts[0], parts[1])
	b.stores.Settings.SetPaymentInfo(info)
	b.send(in.from, fmt.Sprintf("✅ Payment info updated to: %s", info))
}

func (b *Bot) adminAddPackage(in *inbound, kind string) {
	parts := utils.SplitQuoted(strings.Fields(in.text)[2:])
	if len(parts) < 4 {
		b.send(in.from, fmt.Sprintf("❌ Usage: add %s <subcat> \"<name>\" <price> \"<validity>\"", kind))
		return
	}
	subcat := strings.ToLower(parts[0])
	name := parts[1]
	price, ok := utils.ParseAmount(parts[2])
	if !ok {
		b.send(in.from, "❌ Invalid price.")
		return
	}
	validity := parts[3]

	p, err := b.stores.Catalog.Add(kind, subcat, name, price, validity)
	if err != nil {
		b.send(in.from, fmt.Sprintf("❌ Invalid %s category: %s", kind, subcat))
		return
	}
	label := "data"
	if kind == store.CatalogSMS {
		label = "SMS"
	}
	b.send(in.from, fmt.Sprintf("✅ Added %s package: [%d] %s @ KSH %s (%s) to %s.",
		label, p.ID, p.Name, utils.FormatAmount(p.Price), p.Validity, subcat))
}

func (b *Bot) adminRemovePackage(in *inbound, kind string) {
	parts := strings.Fields(in.text)
	if len(parts) < 4 {
		b.send(in.from, fmt.Sprintf("❌ Usage: remove %s <subcat> <id>", kind))
		return
	}
	subcat := strings.ToLower(parts[2])
	id := utils.ParseInt(parts[3], -1)
	if err := b.stores.Catalog.Remove(kind, subcat, id); err != nil {
		b.send(in.from, fmt.Sprintf("❌ %s", err))
		return
	}
	b.send(in.from, fmt.Sprintf("✅ Removed %s package ID %d from %s.", kind, id, subcat))
}

func (b *Bot) adminEditPackage(in *inbound, kind string) {
	parts := strings.Fields(in.text)
	if len(parts) < 5 {
		b.send(in.from, fmt.Sprintf("❌ Usage: edit %s <subcat> <id> <newprice>", kind))
		return
	}
	subcat := strings.ToLower(parts[2])
	id := utils.ParseInt(parts[3], -1)
	price, ok := utils.ParseAmount(parts[4])
	if !ok {
		b.send(in.from, "❌ Invalid price.")
		return
	}
	if err := b.stores.Catalog.EditPrice(kind, subcat, id, price); err != nil {
		b.send(in.from, fmt.Sprintf("❌ %s", err))
		return
	}
	b.send(in.from, fmt.Sprintf("✅ Updated %s package ID %d to KSH %s.", kind, id, utils.FormatAmount(price)))
}

func (b *Bot) adminReferralsAll(in *inbound) {
	min, max := b.stores.Settings.WithdrawalLimits()
	msg := fmt.Sprintf("🙌 *All Referral Data*\nWithdrawal Limits: Min KSH %s, Max KSH %s\n\n",
		utils.FormatAmount(min), utils.FormatAmount(max))
	for _, r := range b.stores.Referrals.All() {
		pin := r.PIN
		if pin == "" {
			pin = "Not Set"
		}
		parent := r.Parent
		if parent == "" {
			parent = "None"
		}
		msg += fmt.Sprintf("User: %s\nCode: %s\nTotal Referred: %d\nEarnings: KSH %s\nWithdrawals: %d\nPIN: %s\nParent: %s\n\n",
			r.Owner, r.Code, len(r.Referred), utils.FormatAmount(r.Earnings), len(r.Withdrawals), pin, parent)
	}
	b.send(in.from, msg)
}

func (b *Bot) adminUpdateWithdrawal(in *inbound) {
	parts := strings.Fields(in.text)
	if len(parts) < 6 {
		b.send(in.from, "❌ Usage: withdraw update <ref_code> <wd_id> <STATUS> <remarks>")
		return
	}
	code := strings.ToUpper(parts[2])
	wdID := parts[3]
	status := strings.ToUpper(parts[4])
	remarks := strings.Join(parts[5:], " ")

	r, ok := b.stores.Referrals.ByCode(code)
	if !ok {
		b.send(in.from, fmt.Sprintf("❌ No user with referral code %s.", code))
		return
	}
	if _, ok := b.stores.Referrals.UpdateWithdrawal(r, wdID, status, remarks); !ok {
		b.send(in.from, fmt.Sprintf("❌ No withdrawal with ID %s for code %s.", wdID, code))
		return
	}

	b.send(r.Owner, fmt.Sprintf("🔔 *Withdrawal Update*\nYour withdrawal (ID: %s) is now *%s*.\nRemarks: %s 👍", wdID, status, remarks))
	b.send(in.from, fmt.Sprintf("✅ Updated withdrawal %s to %s with remarks: \"%s\".", wdID, status, remarks))
}

func (b *Bot) adminSearchOrder(in *inbound) {
	parts := strings.Fields(in.text)
	if len(parts) != 2 {
		b.send(in.from, "❌ Usage: search <ORDER_ID>")
		return
	}
	o, ok := b.stores.Orders.Get(parts[1])
	if !ok {
		b.send(in.from, fmt.Sprintf("❌ Order %s not found.", parts[1]))
		return
	}
	remark := o.Remark
	if remark == "" {
		remark = "None"
	}
	b.send(in.from, fmt.Sprintf(`🔎 *Order Details*

🆔 Order ID: %s
📦 Package: %s
💰 Amount: KSH %s
📞 Recipient: %s
📱 Payment: %s
📌 Status: %s
🕒 Placed at: %s
📝 Remark: %s`,
		o.ID, o.Package, utils.FormatAmount(o.Amount), o.Recipient, o.Payment,
		o.Status, utils.FormatKenyaTime(o.CreatedAt), remark))
}

func (b *Bot) adminAdjustEarnings(in *inbound, deduct bool) {
	parts := strings.Fields(in.text)
	if len(parts) < 5 {
		verb := "add"
		if deduct {
			verb = "deduct"
		}
		b.send(in.from, fmt.Sprintf("❌ Usage: earnings %s <ref_code> <amount> <remarks>", verb))
		return
	}
	code := strings.ToUpper(parts[2])
	amount, ok := utils.ParseAmount(parts[3])
	if !ok {
		b.send(in.from, "❌ Invalid amount.")
		return
	}
	remarks := strings.Join(parts[4:], " ")

	r, found := b.stores.Referrals.ByCode(code)
	if !found {
		b.send(in.from, fmt.Sprintf("❌ No user with referral code %s.", code))
		return
	}

	if deduct {
		if _, err := b.stores.Referrals.Debit(r, amount); err != nil {
			b.send(in.from, fmt.Sprintf("❌ User only has KSH %s.", utils.FormatAmount(r.Earnings)))
			return
		}
		b.send(r.Owner, fmt.Sprintf("🔔 *Admin Adjustment*\nYour earnings were deducted by KSH %s.\nRemarks: %s\nNew Earnings: KSH %s 💰",
			utils.FormatAmount(amount), remarks, utils.FormatAmount(r.Earnings)))
		b.send(in.from, fmt.Sprintf("✅ Deducted KSH %s from user %s.", utils.FormatAmount(amount), r.Owner))
		return
	}

	b.stores.Referrals.Credit(r, amount)
	b.send(r.Owner, fmt.Sprintf("🔔 *Admin Adjustment*\nYour earnings increased by KSH %s.\nRemarks: %s\nNew Earnings: KSH %s 💰",
		utils.FormatAmount(amount), remarks, utils.FormatAmount(r.Earnings)))
	b.send(in.from, fmt.Sprintf("✅ Added KSH %s to user %s.", utils.FormatAmount(amount), r.Owner))
}
