package bot

import (
	"fmt"
	"strings"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/models"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/pkg/utils"
)

const mainMenuText = `🌟 *Welcome to FY'S ULTRA BOT!* 🌟
Thank you for choosing FYS PROPERTY!

Select an option:
1️⃣ Airtime
2️⃣ Data Bundles
3️⃣ SMS Bundles
4️⃣ My Referrals

For order status: status <ORDER_ID>
After payment: PAID <ORDER_ID>
Type "00" for main menu.`

func (b *Bot) handleMainMenu(in *inbound) {
	in.sess = b.stores.Sessions.Reset(in.from)
	b.send(in.from, mainMenuText)
}

// handleBack pops the session to the step recorded as prevStep when the
// current step was entered, or to main when none was recorded.
func (b *Bot) handleBack(in *inbound) {
	if in.sess.PrevStep != "" {
		in.sess.Step = in.sess.PrevStep
		b.send(in.from, "🔙 Returning to previous menu...")
		return
	}
	b.stores.Sessions.Reset(in.from)
	b.send(in.from, "🏠 Returning to main menu...")
}

func (b *Bot) handleHome(in *inbound) {
	b.stores.Sessions.Reset(in.from)
	b.send(in.from, "🏠 Returning to main menu...")
}

// stepMain handles menu selections. Anything that is not a selection is
// given to the order commands and the fallback, so "status ..." still
// works from the main menu.
func (b *Bot) stepMain(in *inbound) {
	switch in.text {
	case "1":
		in.sess.PrevStep = models.StepMain
		in.sess.Step = models.StepAirtimeAmount
		b.send(in.from, "💳 *Airtime Purchase*\nEnter amount in KES (e.g., \"50\").\nType \"0\" to go back.")
	case "2":
		in.sess.PrevStep = models.StepMain
		in.sess.Step = models.StepDataCategory
		b.send(in.from, "📶 *Data Bundles*\nChoose subcategory:\n1) Hourly\n2) Daily\n3) Weekly\n4) Monthly\nType \"0\" to go back.")
	case "3":
		in.sess.PrevStep = models.StepMain
		in.sess.Step = models.StepSMSCategory
		b.send(in.from, "✉️ *SMS Bundles*\nChoose subcategory:\n1) Daily\n2) Weekly\n3) Monthly\nType \"0\" to go back.")
	case "4":
		in.sess.PrevStep = models.StepMain
		in.sess.Step = models.StepReferralsMenu
		b.send(in.from, referralsMenuText)
	default:
		b.handleUnrouted(in)
	}
}

// handleUnrouted gives non-menu input a chance at the order commands
// before the fallback.
func (b *Bot) handleUnrouted(in *inbound) {
	switch {
	case strings.HasPrefix(in.lower, "paid "):
		b.handlePaid(in)
	case strings.HasPrefix(in.lower, "status "):
		b.handleStatus(in)
	default:
		b.handleFallback(in)
	}
}

// handlePaid confirms payment for an order and fires the referral bonus
// trigger.
func (b *Bot) handlePaid(in *inbound) {
	parts := strings.Fields(in.text)
	if len(parts) != 2 {
		b.send(in.from, "❌ Usage: PAID <ORDER_ID>")
		return
	}
	orderID := parts[1]
	order, ok := b.stores.Orders.Get(orderID)
	if !ok {
		b.send(in.from, fmt.Sprintf("❌ Order %s not found.", orderID))
		return
	}
	order, _ = b.stores.Orders.SetStatus(orderID, models.OrderConfirmed, order.Remark)

	b.creditReferral(order)

	b.send(in.from, fmt.Sprintf("✅ Payment confirmed for order %s!\nYour order is now *CONFIRMED*.\n✨ Thank you for choosing FYS PROPERTY! For help, call %s.\nType \"00\" for main menu.", orderID, b.cfg.Bot.HelpLine))
	b.notifyAdmin(fmt.Sprintf("🔔 Order %s marked as CONFIRMED by user %s.", orderID, in.from))
}

func (b *Bot) handleStatus(in *inbound) {
	parts := strings.Fields(in.text)
	if len(parts) != 2 {
		b.send(in.from, "❌ Usage: status <ORDER_ID>")
		return
	}
	orderID := parts[1]
	o, ok := b.stores.Orders.Get(orderID)
	if !ok {
		b.send(in.from, fmt.Sprintf("❌ Order %s not found.", orderID))
		return
	}
	remark := o.Remark
	if remark == "" {
		remark = "None"
	}
	b.send(in.from, fmt.Sprintf(`📦 *Order Details*

🆔 Order ID: %s
📦 Package: %s
💰 Amount: KSH %s
📞 Recipient: %s
📱 Payment: %s
📌 Status: %s
🕒 Placed at: %s
📝 Remark: %s
Type "0" or "00" for menus.`,
		o.ID, o.Package, utils.FormatAmount(o.Amount), o.Recipient, o.Payment,
		o.Status, utils.FormatKenyaTime(o.CreatedAt), remark))
}

func (b *Bot) handleFallback(in *inbound) {
	b.send(in.from, `🤖 *FY'S ULTRA BOT*
Type "menu" for main menu.
For order status: status <ORDER_ID>
After payment: PAID <ORDER_ID>
For referrals: referral or my referrals
Or "0"/"00" for navigation.`)
}
