package telegram

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"diet-planner/internal/app"
	"diet-planner/internal/config"
	"diet-planner/internal/metrics"
	"diet-planner/internal/nutrition"
	"diet-planner/internal/planner"
)

type MockSender struct {
	mu    sync.Mutex
	Texts []string
}

func (m *MockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.Texts = append(m.Texts, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

type MockPlans struct {
	Last   app.PlanRequest
	Report planner.Report
	Err    error
}

func (m *MockPlans) GeneratePlan(_ context.Context, req app.PlanRequest) (planner.Report, error) {
	m.Last = req
	return m.Report, m.Err
}

type MockUsage struct {
	Usage []metrics.DailyUsage
}

func (m *MockUsage) GetDailyUsage(_ context.Context, _ int) ([]metrics.DailyUsage, error) {
	return m.Usage, nil
}

func sampleReport() planner.Report {
	target := nutrition.Target{Calories: 2000, Protein: 60}
	return planner.Report{
		Status:  planner.StatusSuccess,
		Targets: &target,
		MealPlan: planner.MealPlan{
			planner.Breakfast: {{Name: "Roti", Quantity: 125, Cost: 7.5}},
			planner.Lunch:     {{Name: "Roti", Quantity: 125, Cost: 7.5}},
			planner.Snack:     {{Name: "Soya Chunks", Quantity: 30.1, Cost: 5.41}},
			planner.Dinner:    {{Name: "Roti", Quantity: 125, Cost: 7.5}},
		},
		NutritionSummary: &planner.NutritionSummary{Calories: 1900, Protein: 111.5, Fat: 19.1, Carbs: 318.7, Fiber: 64.1, Iron: 25.5},
		TotalCost:        51.65,
		Selected:         []planner.SelectedFood{{Name: "Roti"}, {Name: "Soya Chunks"}},
		Alternatives: planner.AlternativesIndex{
			"Roti":        {{Name: "Peanut", CostEffectiveness: 1.72}, {Name: "Oats", CostEffectiveness: 0.939}},
			"Soya Chunks": {{Name: "Peanut", CostEffectiveness: 1.72}, {Name: "Oats", CostEffectiveness: 0.939}},
		},
	}
}

func TestFormatReportMarkdown(t *testing.T) {
	out := formatReportMarkdown(sampleReport())

	for _, want := range []string{
		"📅 *Daily Meal Plan*",
		"_Target: 2000 kcal, 60 g protein_",
		"*Breakfast*\n• Roti: 125.0 g (₹7.50)",
		"*Snack*\n• Soya Chunks: 30.1 g (₹5.41)",
		"1900.0 kcal · 111.5 g protein",
		"💰 *Total cost:* ₹51.65",
		"Peanut (1.720 g/₹), Oats (0.939 g/₹)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing %q in:\n%s", want, out)
		}
	}
	if strings.Count(out, "Budget protein swaps") != 1 {
		t.Error("Expected alternatives to be listed once")
	}
}

func TestFormatReportMarkdown_Error(t *testing.T) {
	out := formatReportMarkdown(planner.Report{Status: planner.StatusError, Message: "No feasible meal plan found"})
	if out != "❌ *No plan:* No feasible meal plan found" {
		t.Errorf("Unexpected error text %q", out)
	}
}

func TestParsePlanCommand(t *testing.T) {
	req, err := parsePlanCommand("/plan 30 male 70.5 175 sedentary 150 veg Rice, Soya Chunks")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if req.Age != 30 || req.Sex != "male" || req.Weight != 70.5 || req.Height != 175 {
		t.Errorf("Unexpected profile %+v", req)
	}
	if req.ActivityLevel != "sedentary" || req.Budget != 150 || req.DietaryPreference != "veg" {
		t.Errorf("Unexpected constraints %+v", req)
	}
	if len(req.PantryItems) != 2 || req.PantryItems[1] != "Soya Chunks" {
		t.Errorf("Unexpected pantry %v", req.PantryItems)
	}

	tests := []string{
		"/plan 30 male 70",
		"/plan thirty male 70 175 sedentary 150 veg",
		"/plan 30 male 70kg 175 sedentary 150 veg",
		"/plan 30 male 70 175 sedentary cheap veg",
	}
	for _, text := range tests {
		if _, err := parsePlanCommand(text); err == nil {
			t.Errorf("Expected error for %q", text)
		}
	}
}

func TestCommand(t *testing.T) {
	tests := map[string]string{
		"/plan 1 2 3":      "plan",
		"/Foods@DietBot":   "foods",
		"hello":            "",
		"":                 "",
		"  /metrics extra": "metrics",
	}
	for in, want := range tests {
		if got := command(in); got != want {
			t.Errorf("command(%q) = %q, want %q", in, got, want)
		}
	}
}

func newTestBot(cfg *config.Config) (*Bot, *MockSender, *MockPlans) {
	sender := &MockSender{}
	plans := &MockPlans{Report: sampleReport()}
	return newBot(sender, cfg, plans, []string{"Rice", "Soya Chunks"}, &MockUsage{}), sender, plans
}

func message(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: 99},
		Text: text,
	}
}

func TestProcessMessage(t *testing.T) {
	cfg := &config.Config{AdminTelegramID: 1, DatabasePath: t.TempDir() + "/planner.db"}

	t.Run("Plan", func(t *testing.T) {
		b, sender, plans := newTestBot(cfg)
		b.processMessage(message(7, "/plan 30 male 70 175 sedentary 150 veg"))

		if plans.Last.Age != 30 {
			t.Errorf("Expected request to reach planner, got %+v", plans.Last)
		}
		if len(sender.Texts) != 1 || !strings.Contains(sender.Texts[0], "Daily Meal Plan") {
			t.Errorf("Expected plan reply, got %v", sender.Texts)
		}
	})

	t.Run("InvalidInput", func(t *testing.T) {
		b, sender, plans := newTestBot(cfg)
		plans.Err = errors.New("invalid input: please enter a valid age between 1 and 120")
		b.processMessage(message(7, "/plan 0 male 70 175 sedentary 150 veg"))

		if len(sender.Texts) != 1 || !strings.HasPrefix(sender.Texts[0], "❌ *Invalid request:*") {
			t.Errorf("Expected validation reply, got %v", sender.Texts)
		}
	})

	t.Run("Foods", func(t *testing.T) {
		b, sender, _ := newTestBot(cfg)
		b.processMessage(message(7, "/foods"))
		if len(sender.Texts) != 1 || !strings.Contains(sender.Texts[0], "Rice, Soya Chunks") {
			t.Errorf("Expected food list, got %v", sender.Texts)
		}
	})

	t.Run("MetricsDeniedForNonAdmin", func(t *testing.T) {
		b, sender, _ := newTestBot(cfg)
		b.processMessage(message(7, "/metrics"))
		if len(sender.Texts) != 1 || !strings.Contains(sender.Texts[0], "Access Denied") {
			t.Errorf("Expected access denied, got %v", sender.Texts)
		}
	})

	t.Run("MetricsForAdmin", func(t *testing.T) {
		b, sender, _ := newTestBot(cfg)
		b.metricsStore = &MockUsage{Usage: []metrics.DailyUsage{{Date: "2024-05-01", Total: 3, Successes: 2, Infeasible: 1, AvgLatencyMS: 12}}}
		b.processMessage(message(1, "/metrics"))
		if len(sender.Texts) != 1 || !strings.Contains(sender.Texts[0], "*2024-05-01*: 3 plans (2 ok, 1 infeasible), avg 12 ms") {
			t.Errorf("Expected metrics report, got %v", sender.Texts)
		}
	})

	t.Run("Help", func(t *testing.T) {
		b, sender, _ := newTestBot(cfg)
		b.processMessage(message(7, "hi"))
		if len(sender.Texts) != 1 || sender.Texts[0] != usageText {
			t.Errorf("Expected usage text, got %v", sender.Texts)
		}
	})
}

func webhookRequest(secret, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBufferString(body))
	if secret != "" {
		req.Header.Set(SecretTokenHeader, secret)
	}
	return req
}

func TestServeHTTP(t *testing.T) {
	cfg := &config.Config{TelegramWebhookSecret: "s3cret", TelegramAllowedUserIDs: []int64{42}}
	update := `{"update_id": 1, "message": {"message_id": 1, "from": {"id": 7}, "chat": {"id": 7}, "text": "/foods"}}`

	t.Run("BadJSON", func(t *testing.T) {
		b, _, _ := newTestBot(cfg)
		w := httptest.NewRecorder()
		b.ServeHTTP(w, webhookRequest("s3cret", "{"))
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("UnauthorizedIgnored", func(t *testing.T) {
		b, sender, _ := newTestBot(cfg)
		w := httptest.NewRecorder()
		b.ServeHTTP(w, webhookRequest("s3cret", update))
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
		if len(sender.Texts) != 0 {
			t.Errorf("Expected no reply to unauthorized user, got %v", sender.Texts)
		}
	})

	tests := []struct {
		name   string
		cfg    *config.Config
		secret string
	}{
		{"MissingSecretHeader", cfg, ""},
		{"WrongSecretHeader", cfg, "guess"},
		{"NoSecretConfigured", &config.Config{TelegramAllowAll: true}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, sender, _ := newTestBot(tt.cfg)
			w := httptest.NewRecorder()
			b.ServeHTTP(w, webhookRequest(tt.secret, update))
			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
			if len(sender.Texts) != 0 {
				t.Errorf("Expected no reply, got %v", sender.Texts)
			}
		})
	}
}

func TestForgedMetricsRequest(t *testing.T) {
	forged := `{"update_id": 9, "message": {"message_id": 1, "from": {"id": 0}, "chat": {"id": 424242}, "text": "/metrics"}}`

	t.Run("RejectedWithoutSecret", func(t *testing.T) {
		b, sender, _ := newTestBot(&config.Config{})
		w := httptest.NewRecorder()
		b.ServeHTTP(w, webhookRequest("", forged))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
		if len(sender.Texts) != 0 {
			t.Errorf("Expected no reply, got %v", sender.Texts)
		}
	})

	t.Run("UnsetAdminIsNobody", func(t *testing.T) {
		b, sender, _ := newTestBot(&config.Config{TelegramAllowAll: true})
		b.processMessage(message(0, "/metrics"))
		if len(sender.Texts) != 1 || !strings.Contains(sender.Texts[0], "Access Denied") {
			t.Errorf("Expected access denied, got %v", sender.Texts)
		}
	})
}

func TestIsAllowed(t *testing.T) {
	closedByDefault := &Bot{cfg: &config.Config{}}
	if closedByDefault.isAllowed(5) {
		t.Error("Expected empty allow list to admit nobody")
	}
	open := &Bot{cfg: &config.Config{TelegramAllowAll: true}}
	if !open.isAllowed(5) {
		t.Error("Expected TelegramAllowAll to admit everyone")
	}
	closed := &Bot{cfg: &config.Config{TelegramAllowedUserIDs: []int64{1, 2}, TelegramAllowAll: true}}
	if !closed.isAllowed(2) || closed.isAllowed(3) {
		t.Error("Expected allow list to be enforced")
	}
}
