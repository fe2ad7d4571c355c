package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"diet-planner/internal/app"
	"diet-planner/internal/config"
	"diet-planner/internal/logger"
	"diet-planner/internal/metrics"
	"diet-planner/internal/planner"
)

// Sender delivers messages to Telegram.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// PlanGenerator produces plans for raw requests.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, req app.PlanRequest) (planner.Report, error)
}

// UsageReader reads aggregated solve metrics.
type UsageReader interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Bot answers planning commands received through the Telegram webhook.
type Bot struct {
	sender       Sender
	plans        PlanGenerator
	foods        []string
	metricsStore UsageReader
	cfg          *config.Config
	timeout      time.Duration
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, plans PlanGenerator, foods []string, metricsStore UsageReader) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("Authorized on telegram", zap.String("account", api.Self.UserName))

	// setWebhook goes through raw params so secret_token can be set.
	params := tgbotapi.Params{"url": cfg.TelegramWebhookURL}
	params.AddNonEmpty("secret_token", cfg.TelegramWebhookSecret)
	resp, err := api.MakeRequest("setWebhook", params)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info("Webhook set", zap.String("description", resp.Description))

	return newBot(api, cfg, plans, foods, metricsStore), nil
}

func newBot(sender Sender, cfg *config.Config, plans PlanGenerator, foods []string, metricsStore UsageReader) *Bot {
	return &Bot{
		sender:       sender,
		plans:        plans,
		foods:        foods,
		metricsStore: metricsStore,
		cfg:          cfg,
		timeout:      time.Minute,
	}
}

// SecretTokenHeader carries the webhook secret on every update Telegram sends.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// ServeHTTP handles webhook updates. Messages are processed in the background
// so Telegram gets its 200 immediately.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !b.fromTelegram(r) {
		logger.Warn("Rejected webhook call without a valid secret token", zap.String("remote_addr", r.RemoteAddr))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logger.Warn("Error parsing update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	if update.Message == nil || update.Message.From == nil {
		return
	}
	if !b.isAllowed(update.Message.From.ID) {
		logger.Warn("Unauthorized access attempt",
			zap.Int64("user_id", update.Message.From.ID),
			zap.String("username", update.Message.From.UserName),
		)
		return
	}

	go b.processMessage(update.Message)
}

// fromTelegram checks the secret token. An unset secret rejects everything.
func (b *Bot) fromTelegram(r *http.Request) bool {
	secret := b.cfg.TelegramWebhookSecret
	if secret == "" {
		return false
	}
	got := r.Header.Get(SecretTokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(secret)) == 1
}

// isAllowed reports whether userID may use the bot. An empty allow list
// admits nobody unless TelegramAllowAll is set.
func (b *Bot) isAllowed(userID int64) bool {
	if len(b.cfg.TelegramAllowedUserIDs) == 0 {
		return b.cfg.TelegramAllowAll
	}
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if userID == id {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	switch command(msg.Text) {
	case "plan":
		b.handlePlanCommand(msg)
	case "foods":
		b.send(msg.Chat.ID, formatFoods(b.foods))
	case "metrics":
		b.handleMetricsRequest(msg)
	default:
		b.send(msg.Chat.ID, usageText)
	}
}

const usageText = "🥗 *Budget Diet Planner*\n\n" +
	"`/plan <age> <sex> <weight kg> <height cm> <activity> <budget> <preference> [pantry,items]`\n" +
	"Example: `/plan 30 male 70 175 sedentary 150 veg Rice,Dal`\n\n" +
	"Activity: sedentary, lightly\\_active, moderately\\_active, very\\_active, extremely\\_active\n" +
	"Preference: vegetarian, non\\_vegetarian, eggetarian\n\n" +
	"`/foods` lists the available foods."

func (b *Bot) handlePlanCommand(msg *tgbotapi.Message) {
	req, err := parsePlanCommand(msg.Text)
	if err != nil {
		b.send(msg.Chat.ID, fmt.Sprintf("❌ %s\n\n%s", escapeMarkdown(err.Error()), usageText))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	logger.Info("Generating plan", zap.Int64("user_id", msg.From.ID), zap.String("request", msg.Text))
	report, err := b.plans.GeneratePlan(ctx, req)
	if err != nil {
		b.send(msg.Chat.ID, fmt.Sprintf("❌ *Invalid request:* %s", escapeMarkdown(err.Error())))
		return
	}
	b.send(msg.Chat.ID, formatReportMarkdown(report))
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if !b.isAdmin(msg.From.ID) || b.metricsStore == nil {
		b.send(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.metricsStore.GetDailyUsage(context.Background(), 7)
	if err != nil {
		logger.Error("Error fetching metrics", zap.Error(err))
		b.send(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	b.send(msg.Chat.ID, formatMetrics(usage, metrics.GetSysHealth(b.cfg.DatabasePath)))
}

// isAdmin is false for everyone when no admin is configured.
func (b *Bot) isAdmin(userID int64) bool {
	return b.cfg.AdminTelegramID != 0 && userID == b.cfg.AdminTelegramID
}

func (b *Bot) send(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.sender.Send(m); err != nil {
		logger.Warn("Failed to send telegram message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// command returns the bot command of text without its slash or @botname suffix.
func command(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0][1:], "@")
	return strings.ToLower(cmd)
}

// parsePlanCommand reads "/plan age sex weight height activity budget preference [pantry]".
// The pantry is the comma separated remainder, so names may contain spaces.
func parsePlanCommand(text string) (app.PlanRequest, error) {
	fields := strings.Fields(text)
	if len(fields) < 8 {
		return app.PlanRequest{}, fmt.Errorf("expected 7 arguments, got %d", max(0, len(fields)-1))
	}

	var (
		req app.PlanRequest
		err error
	)
	if req.Age, err = strconv.Atoi(fields[1]); err != nil {
		return app.PlanRequest{}, fmt.Errorf("age must be a whole number, got %q", fields[1])
	}
	req.Sex = fields[2]
	if req.Weight, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return app.PlanRequest{}, fmt.Errorf("weight must be a number, got %q", fields[3])
	}
	if req.Height, err = strconv.ParseFloat(fields[4], 64); err != nil {
		return app.PlanRequest{}, fmt.Errorf("height must be a number, got %q", fields[4])
	}
	req.ActivityLevel = fields[5]
	if req.Budget, err = strconv.ParseFloat(fields[6], 64); err != nil {
		return app.PlanRequest{}, fmt.Errorf("budget must be a number, got %q", fields[6])
	}
	req.DietaryPreference = fields[7]
	req.PantryItems = app.SplitPantry(strings.Join(fields[8:], " "))
	return req, nil
}
