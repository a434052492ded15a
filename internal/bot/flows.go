package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/models"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/pkg/utils"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/store"
)

// ── Airtime flow ──────────────────────────────────────────────────────

func (b *Bot) stepAirtimeAmount(in *inbound) {
	amt, ok := utils.ParseAmount(in.text)
	if !ok {
		b.send(in.from, "❌ Invalid amount.")
		return
	}
	in.sess.AirtimeAmount = amt
	in.sess.PrevStep = models.StepAirtimeAmount
	in.sess.Step = models.StepAirtimeRecipient
	b.send(in.from, fmt.Sprintf("✅ Amount set to KSH %s.\nEnter recipient phone number (07XXXXXXXX):", utils.FormatAmount(amt)))
}

func (b *Bot) stepAirtimeRecipient(in *inbound) {
	if !utils.IsSafaricomNumber(in.text) {
		b.send(in.from, "❌ Invalid phone number.")
		return
	}
	in.sess.AirtimeRecipient = in.text
	in.sess.PrevStep = models.StepAirtimeRecipient
	in.sess.Step = models.StepAirtimePayment
	b.send(in.from, fmt.Sprintf("✅ Recipient set: %s.\nEnter your payment number (07XXXXXXXX):", in.text))
}

func (b *Bot) stepAirtimePayment(in *inbound) {
	if !utils.IsSafaricomNumber(in.text) {
		b.send(in.from, "❌ Invalid payment number.")
		return
	}
	amt := in.sess.AirtimeAmount
	recipient := in.sess.AirtimeRecipient
	if amt <= 0 {
		b.handleMainMenu(in)
		return
	}

	in.sess.AirtimeAmount = 0
	in.sess.AirtimeRecipient = ""

	b.completePurchase(in, fmt.Sprintf("Airtime (KES %s)", utils.FormatAmount(amt)), amt, recipient, in.text, "Airtime")
}

// ── Data bundle flow ──────────────────────────────────────────────────

var dataCategories = map[string]string{
	"1": "hourly", "2": "daily", "3": "weekly", "4": "monthly",
}

func (b *Bot) stepDataCategory(in *inbound) {
	cat, ok := dataCategories[in.text]
	if !ok {
		b.send(in.from, "❌ Invalid choice. Please type 1, 2, 3, or 4.")
		return
	}
	in.sess.DataCategory = cat
	in.sess.PrevStep = models.StepDataCategory
	in.sess.Step = models.StepDataList
	b.send(in.from, b.packageList(store.CatalogData, cat))
}

func (b *Bot) stepDataList(in *inbound) {
	id := utils.ParseInt(in.text, -1)
	if id < 0 {
		b.send(in.from, "❌ Invalid package ID.")
		return
	}
	pkg, ok := b.stores.Catalog.Find(store.CatalogData, in.sess.DataCategory, id)
	if !ok {
		b.send(in.from, "❌ No package with that ID.")
		return
	}
	in.sess.DataBundle = pkg
	in.sess.PrevStep = models.StepDataList
	in.sess.Step = models.StepDataRecipient
	b.send(in.from, fmt.Sprintf("✅ Selected: %s (KSH %s).\nEnter recipient phone number (07XXXXXXXX):", pkg.Name, utils.FormatAmount(pkg.Price)))
}

func (b *Bot) stepDataRecipient(in *inbound) {
	if !utils.IsSafaricomNumber(in.text) {
		b.send(in.from, "❌ Invalid phone number.")
		return
	}
	in.sess.DataRecipient = in.text
	in.sess.PrevStep = models.StepDataRecipient
	in.sess.Step = models.StepDataPayment
	b.send(in.from, fmt.Sprintf("✅ Recipient set: %s.\nEnter your payment number (07XXXXXXXX):", in.text))
}

func (b *Bot) stepDataPayment(in *inbound) {
	if !utils.IsSafaricomNumber(in.text) {
		b.send(in.from, "❌ Invalid payment number.")
		return
	}
	pkg := in.sess.DataBundle
	if pkg == nil {
		b.handleMainMenu(in)
		return
	}
	recipient := in.sess.DataRecipient
	desc := fmt.Sprintf("%s (%s)", pkg.Name, in.sess.DataCategory)

	in.sess.DataBundle = nil
	in.sess.DataRecipient = ""

	b.completePurchase(in, desc, pkg.Price, recipient, in.text, "Data")
}

// ── SMS bundle flow ───────────────────────────────────────────────────

var smsCategories = map[string]string{
	"1": "daily", "2": "weekly", "3": "monthly",
}

func (b *Bot) stepSMSCategory(in *inbound) {
	cat, ok := smsCategories[in.text]
	if !ok {
		b.send(in.from, "❌ Invalid choice.")
		return
	}
	in.sess.SMSCategory = cat
	in.sess.PrevStep = models.StepSMSCategory
	in.sess.Step = models.StepSMSList
	b.send(in.from, b.packageList(store.CatalogSMS, cat))
}

func (b *Bot) stepSMSList(in *inbound) {
	id := utils.ParseInt(in.text, -1)
	if id < 0 {
		b.send(in.from, "❌ Invalid package ID.")
		return
	}
	pkg, ok := b.stores.Catalog.Find(store.CatalogSMS, in.sess.SMSCategory, id)
	if !ok {
		b.send(in.from, "❌ No package with that ID.")
		return
	}
	in.sess.SMSBundle = pkg
	in.sess.PrevStep = models.StepSMSList
	in.sess.Step = models.StepSMSRecipient
	b.send(in.from, fmt.Sprintf("✅ Selected: %s (KSH %s).\nEnter recipient phone number (07XXXXXXXX):", pkg.Name, utils.FormatAmount(pkg.Price)))
}

func (b *Bot) stepSMSRecipient(in *inbound) {
	if !utils.IsSafaricomNumber(in.text) {
		b.send(in.from, "❌ Invalid phone number.")
		return
	}
	in.sess.SMSRecipient = in.text
	in.sess.PrevStep = models.StepSMSRecipient
	in.sess.Step = models.StepSMSPayment
	b.send(in.from, fmt.Sprintf("✅ Recipient set: %s.\nEnter your payment number (07XXXXXXXX):", in.text))
}

func (b *Bot) stepSMSPayment(in *inbound) {
	if !utils.IsSafaricomNumber(in.text) {
		b.send(in.from, "❌ Invalid payment number.")
		return
	}
	pkg := in.sess.SMSBundle
	if pkg == nil {
		b.handleMainMenu(in)
		return
	}
	recipient := in.sess.SMSRecipient
	desc := fmt.Sprintf("%s (SMS - %s)", pkg.Name, in.sess.SMSCategory)

	in.sess.SMSBundle = nil
	in.sess.SMSRecipient = ""

	b.completePurchase(in, desc, pkg.Price, recipient, in.text, "SMS")
}

// packageList renders a subcategory's bundles as a numbered menu.
func (b *Bot) packageList(kind, cat string) string {
	pkgs, err := b.stores.Catalog.List(kind, cat)
	if err != nil {
		return "❌ Invalid choice."
	}
	label := "Data"
	if kind == store.CatalogSMS {
		label = "SMS"
	}
	msg := fmt.Sprintf("✅ *%s %s Bundles:*\n", strings.ToUpper(cat), label)
	for _, p := range pkgs {
		msg += fmt.Sprintf("[%d] %s @ KSH %s (%s)\n", p.ID, p.Name, utils.FormatAmount(p.Price), p.Validity)
	}
	msg += "\nType the package ID to select, or \"0\" to go back."
	return msg
}

// ── Flow completion ───────────────────────────────────────────────────

// completePurchase is the terminal step of every flow. It creates the
// PENDING order, attaches the identity's recorded referrer, resets the
// session, and only then runs the payment push and the outbound
// notifications on a separate goroutine. Everything the goroutine needs
// is captured in the order value first; it never touches the session,
// so a second message from the same identity arriving while the push is
// pending cannot corrupt the flow.
func (b *Bot) completePurchase(in *inbound, pkgDesc string, amount float64, recipient, payNumber, kind string) {
	orderID := utils.GenerateOrderID()
	for b.stores.Orders.Exists(orderID) {
		orderID = utils.GenerateOrderID()
	}

	order := &models.Order{
		ID:        orderID,
		Customer:  in.from,
		Package:   pkgDesc,
		Amount:    amount,
		Recipient: recipient,
		Payment:   payNumber,
		Status:    models.OrderPending,
		CreatedAt: time.Now(),
		Referrer:  b.stores.Sessions.Referrer(in.from),
	}
	b.stores.Orders.Put(order)

	// PrevStep is cleared too: "0" after completion must not re-enter
	// the finished flow with its scratch already gone.
	in.sess.Step = models.StepMain
	in.sess.PrevStep = ""

	b.logger.Info("order created",
		zap.String("order", orderID),
		zap.String("kind", kind),
		zap.Float64("amount", amount),
		zap.String("customer", in.from))

	snapshot := *order
	b.pushes.Add(1)
	go func() {
		defer b.pushes.Done()
		b.pushAndNotify(&snapshot, kind)
	}()
}

// pushAndNotify runs the STK push and sends the confirmation, summary
// and admin mirror. Operates only on its snapshot of the order fields.
func (b *Bot) pushAndNotify(o *models.Order, kind string) {
	res := b.gateway.Push(context.Background(), o.Amount, o.Payment, o.ID, "FYS PROPERTY BOT")

	info := b.stores.Settings.PaymentInfo()
	if res.Success {
		b.send(o.Customer, fmt.Sprintf("%s\nIf you don't receive it, please pay manually to %s.", res.Message, info))
	} else {
		b.send(o.Customer, fmt.Sprintf("%s\nPlease pay manually to %s.", res.Message, info))
	}

	placedAt := utils.FormatKenyaTime(o.CreatedAt)
	b.send(o.Customer, fmt.Sprintf(`🛒 *Order Created!*
🆔 %s
Package: %s
💰 Price: KSH %s
📞 Recipient: %s
📱 Payment: %s
🕒 Placed at: %s
👉 Type: PAID %s when you complete payment.
Type "00" for main menu.`,
		o.ID, o.Package, utils.FormatAmount(o.Amount), o.Recipient, o.Payment, placedAt, o.ID))

	b.notifyAdmin(fmt.Sprintf(`🔔 *New %s Order*
🆔 %s
Package: %s
Price: KSH %s
Recipient: %s
Payment: %s
Time: %s
User: %s
(Use admin commands to update.)`,
		kind, o.ID, o.Package, utils.FormatAmount(o.Amount), o.Recipient, o.Payment, placedAt, o.Customer))
}
