package bot

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/config"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/models"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/payment"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/pkg/chat"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/store"
)

// Stores bundles the in-memory ledgers the bot operates on. The bot's
// dispatch loop and the admin processor are the only writers.
type Stores struct {
	Sessions  *store.SessionStore
	Orders    *store.OrderStore
	Referrals *store.ReferralStore
	Catalog   *store.CatalogStore
	Bans      *store.BanStore
	Settings  *store.SettingsStore
}

// Bot routes inbound chat messages through the conversation engine, the
// referral workflows and the admin command processor.
type Bot struct {
	cfg     *config.Config
	stores  *Stores
	sender  chat.Sender
	gateway payment.Gateway
	logger  *zap.Logger

	// isAdmin decides who may use the admin grammar. Injectable so role
	// tiers can be added without touching dispatch.
	isAdmin func(identity string) bool

	routes []route
	steps  map[string]func(*inbound)

	inbox chan models.InboundMessage
	quit  chan struct{}

	// pushes tracks in-flight payment goroutines so Stop can drain them.
	pushes sync.WaitGroup
}

// inbound is one message being routed, with the sender's session
// resolved once up front.
type inbound struct {
	from  string
	text  string
	lower string
	sess  *models.Session

	// admin is the resolved admin command handler, set during matching.
	admin func(*inbound)
}

// route is one entry in the ordered dispatch table. The first matching
// route wins.
type route struct {
	name  string
	match func(*inbound) bool
	run   func(*inbound)
}

// New creates a bot. sender and gateway are interfaces so tests can
// substitute fakes.
func New(cfg *config.Config, stores *Stores, sender chat.Sender, gateway payment.Gateway, logger *zap.Logger) *Bot {
	adminID := cfg.Bot.AdminID()
	b := &Bot{
		cfg:     cfg,
		stores:  stores,
		sender:  sender,
		gateway: gateway,
		logger:  logger,
		isAdmin: func(identity string) bool { return identity == adminID },
		inbox:   make(chan models.InboundMessage, 256),
		quit:    make(chan struct{}),
	}
	b.registerSteps()
	b.registerRoutes()
	return b
}

// registerRoutes builds the dispatch table. Precedence: ban → admin →
// referral quick commands → navigation → step continuation → order
// commands → fallback.
func (b *Bot) registerRoutes() {
	b.routes = []route{
		{
			name: "banned",
			match: func(in *inbound) bool {
				return b.stores.Bans.IsBanned(in.from) && !b.isAdmin(in.from)
			},
			run: func(in *inbound) {
				b.send(in.from, "🚫 You are banned from using this service.")
			},
		},
		{
			name:  "admin",
			match: func(in *inbound) bool { return b.isAdmin(in.from) && b.matchAdminCommand(in) },
			run:   func(in *inbound) { b.runAdminCommand(in) },
		},
		{
			name:  "referral link",
			match: func(in *inbound) bool { return in.lower == "referral" },
			run:   b.handleReferralLink,
		},
		{
			name:  "referral entry",
			match: func(in *inbound) bool { return strings.HasPrefix(in.lower, "ref ") },
			run:   b.handleReferralEntry,
		},
		{
			name:  "main menu",
			match: func(in *inbound) bool { return in.lower == "menu" || in.lower == "start" },
			run:   b.handleMainMenu,
		},
		{
			name:  "back",
			match: func(in *inbound) bool { return in.text == "0" },
			run:   b.handleBack,
		},
		{
			name:  "home",
			match: func(in *inbound) bool { return in.text == "00" },
			run:   b.handleHome,
		},
		{
			name: "step",
			match: func(in *inbound) bool {
				_, ok := b.steps[in.sess.Step]
				return ok
			},
			run: func(in *inbound) { b.steps[in.sess.Step](in) },
		},
		{
			name:  "paid",
			match: func(in *inbound) bool { return strings.HasPrefix(in.lower, "paid ") },
			run:   b.handlePaid,
		},
		{
			name:  "status",
			match: func(in *inbound) bool { return strings.HasPrefix(in.lower, "status ") },
			run:   b.handleStatus,
		},
		{
			name:  "fallback",
			match: func(in *inbound) bool { return true },
			run:   b.handleFallback,
		},
	}
}

// registerSteps builds the step-continuation table for the conversation
// engine.
func (b *Bot) registerSteps() {
	b.steps = map[string]func(*inbound){
		models.StepMain: b.stepMain,

		models.StepAirtimeAmount:    b.stepAirtimeAmount,
		models.StepAirtimeRecipient: b.stepAirtimeRecipient,
		models.StepAirtimePayment:   b.stepAirtimePayment,

		models.StepDataCategory:  b.stepDataCategory,
		models.StepDataList:      b.stepDataList,
		models.StepDataRecipient: b.stepDataRecipient,
		models.StepDataPayment:   b.stepDataPayment,

		models.StepSMSCategory:  b.stepSMSCategory,
		models.StepSMSList:      b.stepSMSList,
		models.StepSMSRecipient: b.stepSMSRecipient,
		models.StepSMSPayment:   b.stepSMSPayment,

		models.StepReferralsMenu:   b.stepReferralsMenu,
		models.StepOldPIN:          b.stepOldPIN,
		models.StepSetNewPIN:       b.stepSetNewPIN,
		models.StepWithdrawRequest: b.stepWithdrawRequest,
		models.StepWithdrawPIN:     b.stepWithdrawPIN,
	}
}

// Enqueue hands an inbound message to the dispatch loop. A full inbox
// drops the message rather than block the webhook.
func (b *Bot) Enqueue(msg models.InboundMessage) {
	select {
	case b.inbox <- msg:
	default:
		b.logger.Warn("inbox full, dropping message", zap.String("from", msg.From))
	}
}

// Start runs the dispatch loop: one message at a time, in arrival
// order, on a single goroutine. Blocks until Stop.
func (b *Bot) Start() {
	b.logger.Info("Bot dispatch loop started")
	for {
		select {
		case msg := <-b.inbox:
			b.Handle(msg)
		case <-b.quit:
			return
		}
	}
}

// Stop terminates the dispatch loop and waits for in-flight payment
// pushes to finish.
func (b *Bot) Stop() {
	close(b.quit)
	b.pushes.Wait()
}

// Handle routes one message through the dispatch table.
func (b *Bot) Handle(msg models.InboundMessage) {
	// Group chats are dropped before any routing.
	if chat.IsGroup(msg.From) {
		return
	}

	text := strings.TrimSpace(msg.Body)
	in := &inbound{
		from:  msg.From,
		text:  text,
		lower: strings.ToLower(text),
		sess:  b.stores.Sessions.Get(msg.From),
	}
	b.stores.Sessions.Touch(msg.From)

	for _, r := range b.routes {
		if r.match(in) {
			r.run(in)
			return
		}
	}
}

// send delivers text to an identity, logging delivery failures. No
// handler treats a failed send as fatal.
func (b *Bot) send(to, text string) {
	if err := b.sender.Send(to, text); err != nil {
		b.logger.Error("send failed", zap.String("to", to), zap.Error(err))
	}
}

// notifyAdmin mirrors a message to the admin identity.
func (b *Bot) notifyAdmin(text string) {
	b.send(b.cfg.Bot.AdminID(), text)
}

// AnnounceStartup greets the admin once the bot is live.
func (b *Bot) AnnounceStartup() {
	b.notifyAdmin("🎉 Hello Admin! FY'S ULTRA BOT is now live.\nType \"menu\" for user flow or \"Admin CMD\" for admin commands.")
}
