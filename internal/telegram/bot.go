// Package telegram is the chat surface: it maps commands, callbacks, voice
// notes and shared locations onto the session state machine and the chef
// service, and renders results as Markdown messages.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"qihuang-chef/internal/audio"
	"qihuang-chef/internal/chef"
	"qihuang-chef/internal/config"
	"qihuang-chef/internal/metrics"
	"qihuang-chef/internal/plan"
	"qihuang-chef/internal/session"
	"qihuang-chef/internal/shared"
)

// Manager hands out one Session per chat, created lazily. Favorites and
// purchased state come from the shared store, so they survive restarts.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*session.Session

	store           session.StateStore
	defaultLocation string
	log             zerolog.Logger
}

// NewManager creates the session manager.
func NewManager(store session.StateStore, defaultLocation string, logger zerolog.Logger) *Manager {
	return &Manager{
		sessions:        make(map[int64]*session.Session),
		store:           store,
		defaultLocation: defaultLocation,
		log:             logger,
	}
}

// Get returns the session for a chat, creating it on first contact.
func (m *Manager) Get(chatID int64) *session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[chatID]; ok {
		return s
	}
	s := session.New(m.store, m.defaultLocation, m.log.With().Int64("chat_id", chatID).Logger())
	m.sessions[chatID] = s
	return s
}

// Bot wraps the Telegram API, the chef service and per-chat sessions.
type Bot struct {
	api          *tgbotapi.BotAPI
	chef         *chef.Service
	sessions     *Manager
	metricsStore *metrics.Store
	cfg          *config.Config
	log          zerolog.Logger
}

// NewBot initializes the Telegram Bot and sets the webhook.
func NewBot(
	cfg *config.Config,
	chefSvc *chef.Service,
	sessions *Manager,
	metricsStore *metrics.Store,
	logger zerolog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info().Str("account", api.Self.UserName).Msg("authorized")

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info().Str("response", resp.Description).Msg("webhook set")

	return &Bot{
		api:          api,
		chef:         chefSvc,
		sessions:     sessions,
		metricsStore: metricsStore,
		cfg:          cfg,
		log:          logger,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.log.Error().Err(err).Msg("error parsing update")
		return
	}

	if update.CallbackQuery != nil {
		if !b.allowed(update.CallbackQuery.From.ID) {
			return
		}
		go b.handleCallbackQuery(update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}
	if !b.allowed(update.Message.From.ID) {
		b.log.Warn().
			Int64("user_id", update.Message.From.ID).
			Str("username", update.Message.From.UserName).
			Msg("unauthorized access attempt")
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) allowed(userID int64) bool {
	if len(b.cfg.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if userID == id {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	sess := b.sessions.Get(msg.Chat.ID)

	switch {
	case msg.Voice != nil:
		b.handleVoice(msg, sess)
		return
	case msg.Location != nil:
		sess.SetCoordinates(msg.Location.Latitude, msg.Location.Longitude)
		b.send(msg.Chat.ID, fmt.Sprintf("📍 已定位：%s，排餐时会参考当地时令。", sess.Location()))
		return
	}

	cmd, args := splitCommand(msg.Text)
	switch cmd {
	case "/start":
		b.handleStart(msg.Chat.ID)
	case "/focus":
		b.sendWithKeyboard(msg.Chat.ID, "🎯 选择本周的养生方向（可多选）：", focusKeyboard(sess))
	case "/plan":
		b.handleGeneratePlan(msg.Chat.ID, sess, "")
	case "/refine":
		if sess.Plan() == nil {
			b.send(msg.Chat.ID, "还没有方案可以微调，先 /plan 生成一份吧。")
			return
		}
		b.sendWithKeyboard(msg.Chat.ID, "🌶 选一个口味方向，主厨会在现有偏好上微调：", tasteKeyboard())
	case "/prefs":
		if args == "" {
			b.send(msg.Chat.ID, fmt.Sprintf("当前偏好：%s\n用 `/prefs 不吃香菜，少油` 这样更新。", orNone(sess.Preferences())))
			return
		}
		sess.SetPreferences(args)
		b.send(msg.Chat.ID, "✅ 偏好已更新，下次排餐生效。")
	case "/ask":
		if args == "" {
			b.send(msg.Chat.ID, "想问什么？比如 `/ask 山药怎么处理不痒手`，也可以直接发语音。")
			return
		}
		b.handleAsk(msg.Chat.ID, sess, args)
	case "/menu":
		p := sess.Plan()
		if p == nil {
			b.send(msg.Chat.ID, "还没有方案，先 /plan 生成一份吧。")
			return
		}
		b.sendWithKeyboard(msg.Chat.ID, "📖 选择要查看的餐食：", menuKeyboard(p))
	case "/list":
		b.handleShoppingList(msg.Chat.ID, sess)
	case "/favs":
		b.handleFavorites(msg.Chat.ID, sess)
	case "/today":
		b.handleToday(msg.Chat.ID, sess)
	case "/metrics":
		b.handleMetricsRequest(msg)
	default:
		// Bare text becomes a chef question, matching the voice flow.
		if strings.TrimSpace(msg.Text) != "" {
			b.handleAsk(msg.Chat.ID, sess, msg.Text)
		}
	}
}

func (b *Bot) handleStart(chatID int64) {
	b.send(chatID, `👨‍🍳 *岐黄小厨* 为你定制药食同源的一周餐单。

/focus — 选择养生方向
/plan — 生成一周方案
/refine — 口味微调
/menu — 查看食谱与步骤
/list — 采购清单
/ask — 问大厨（也可直接发语音）
/favs — 收藏的菜
/today — 今日推荐

发送位置可让方案贴合当地时令。`)
}

// handleGeneratePlan runs the joint weekly-plan + recommendation request.
// Both results commit together; on failure the previous plan is untouched.
func (b *Bot) handleGeneratePlan(chatID int64, sess *session.Session, refineDirective string) {
	req, err := sess.BeginPlan(refineDirective)
	if errors.Is(err, session.ErrNoFocus) {
		b.send(chatID, "请先用 /focus 至少选择一个养生方向哦！")
		return
	}

	statusID := b.send(chatID, "🧑‍🍳 *主厨排餐中...*\n（正在按时令与方向调配一周方案）")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	var (
		p     *plan.WeeklyPlan
		rec   plan.TodayRecommendation
		metas []shared.CallMeta
		mu    sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, meta, err := b.chef.WeeklyPlan(gctx, chef.PlanRequest{
			Focus:       req.Focus,
			Location:    req.Location,
			Preferences: req.Preferences,
		})
		mu.Lock()
		metas = append(metas, meta)
		mu.Unlock()
		if err != nil {
			return err
		}
		p = result
		return nil
	})
	g.Go(func() error {
		result, meta := b.chef.TodayRecommendation(gctx, req.Focus)
		mu.Lock()
		metas = append(metas, meta)
		mu.Unlock()
		rec = result
		return nil
	})
	err = g.Wait()

	for _, m := range metas {
		if recErr := b.metricsStore.RecordMeta(m); recErr != nil {
			b.log.Warn().Err(recErr).Msg("failed to record metrics")
		}
	}

	if err != nil {
		b.log.Error().Err(err).Msg("plan generation failed")
		b.edit(chatID, statusID, "❌ AI 主厨暂时无法调配方案，请稍后重试。之前的方案仍然有效。")
		return
	}
	if !sess.CommitPlan(req, p, rec) {
		b.edit(chatID, statusID, "已有更新的排餐请求，本次结果已忽略。")
		return
	}

	b.edit(chatID, statusID, formatPlan(p, &rec))
	b.sendWithKeyboard(chatID, formatShoppingList(p, sess), shoppingKeyboard(p, sess))
}

func (b *Bot) handleAsk(chatID int64, sess *session.Session, question string) {
	statusID := b.send(chatID, "👨‍🍳 大厨思考中...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	contextInfo := "本周方案：暂无"
	if p := sess.Plan(); p != nil {
		contextInfo = fmt.Sprintf("本周方案：%s", p.Theme)
	}

	answer, meta, err := b.chef.Ask(ctx, question, contextInfo)
	if recErr := b.metricsStore.RecordMeta(meta); recErr != nil {
		b.log.Warn().Err(recErr).Msg("failed to record metrics")
	}
	if err != nil {
		b.log.Error().Err(err).Msg("ask failed")
		b.edit(chatID, statusID, "❌ 大厨暂时没听清，请换个问法试试。")
		return
	}

	sess.SetChefAnswer(answer)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔊 听大厨说", "speak"),
		),
	)
	edit := tgbotapi.NewEditMessageText(chatID, statusID, "👨‍🍳 "+answer)
	edit.ReplyMarkup = &keyboard
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error().Err(err).Msg("failed to edit message")
	}
}

// handleVoice transcribes a voice note and routes the transcript through the
// chef question flow. The capture slot keeps overlapping notes sequential.
func (b *Bot) handleVoice(msg *tgbotapi.Message, sess *session.Session) {
	if err := sess.BeginListening(); err != nil {
		b.send(msg.Chat.ID, "🎙 上一条语音还在处理，请稍候。")
		return
	}
	defer sess.StopListening()

	data, err := b.downloadFile(msg.Voice.FileID)
	if err != nil {
		b.log.Error().Err(err).Msg("failed to download voice file")
		b.send(msg.Chat.ID, "❌ 语音下载失败，请重试。")
		return
	}

	mimeType := msg.Voice.MimeType
	if mimeType == "" {
		mimeType = "audio/ogg"
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	transcript, meta, err := b.chef.Transcribe(ctx, data, mimeType)
	if recErr := b.metricsStore.RecordMeta(meta); recErr != nil {
		b.log.Warn().Err(recErr).Msg("failed to record metrics")
	}
	if err != nil {
		b.log.Error().Err(err).Msg("transcription failed")
		b.send(msg.Chat.ID, "❌ 没听清这条语音，请再试一次。")
		return
	}
	if transcript == "" {
		b.send(msg.Chat.ID, "🎙 这条语音里好像没有说话内容。")
		return
	}

	b.send(msg.Chat.ID, fmt.Sprintf("🎙 听到了：_%s_", transcript))
	b.handleAsk(msg.Chat.ID, sess, transcript)
}

func (b *Bot) handleSpeak(chatID int64, sess *session.Session) {
	text := sess.ChefAnswer()
	if text == "" {
		b.send(chatID, "还没有可以朗读的回答。")
		return
	}
	if err := sess.BeginSpeaking(); err != nil {
		return
	}
	defer sess.EndSpeaking()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	speech, meta, err := b.chef.Speak(ctx, text)
	if recErr := b.metricsStore.RecordMeta(meta); recErr != nil {
		b.log.Warn().Err(recErr).Msg("failed to record metrics")
	}
	if err != nil {
		b.log.Error().Err(err).Msg("speech synthesis failed")
		b.send(chatID, "❌ 语音合成失败，可以直接看文字回答。")
		return
	}

	wav := audio.WrapWAV(speech.PCM, speech.SampleRate)
	voice := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{Name: "chef.wav", Bytes: wav})
	voice.Title = "大厨说"
	if _, err := b.api.Send(voice); err != nil {
		b.log.Error().Err(err).Msg("failed to send audio")
	}
}

func (b *Bot) handleShoppingList(chatID int64, sess *session.Session) {
	p := sess.Plan()
	if p == nil {
		b.send(chatID, "还没有方案，先 /plan 生成一份吧。")
		return
	}
	b.sendWithKeyboard(chatID, formatShoppingList(p, sess), shoppingKeyboard(p, sess))
}

func (b *Bot) handleFavorites(chatID int64, sess *session.Session) {
	favs := sess.Favorites()
	if len(favs) == 0 {
		b.send(chatID, "还没有收藏的菜。打开任意食谱点 🤍 收藏。")
		return
	}
	var sb strings.Builder
	sb.WriteString("❤️ *我的收藏*\n\n")
	for _, fav := range favs {
		sb.WriteString(fmt.Sprintf("• *%s* — %s\n", fav.Name, fav.TCMBenefit))
	}
	b.send(chatID, sb.String())
}

func (b *Bot) handleToday(chatID int64, sess *session.Session) {
	if rec := sess.Today(); rec != nil {
		b.send(chatID, fmt.Sprintf("🍲 *今日推荐：%s*\n%s\n_%s_", rec.Name, rec.Benefit, rec.Reason))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rec, meta := b.chef.TodayRecommendation(ctx, sess.Focus())
	if recErr := b.metricsStore.RecordMeta(meta); recErr != nil {
		b.log.Warn().Err(recErr).Msg("failed to record metrics")
	}
	b.send(chatID, fmt.Sprintf("🍲 *今日推荐：%s*\n%s\n_%s_", rec.Name, rec.Benefit, rec.Reason))
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.send(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		b.send(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	health := metrics.GetSysHealth("data")

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")
	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}
	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))

	b.send(msg.Chat.ID, sb.String())
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	// Answer first to remove the client spinner.
	b.api.Request(tgbotapi.NewCallback(query.ID, ""))

	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID
	sess := b.sessions.Get(chatID)
	parts := strings.Split(query.Data, "|")

	switch parts[0] {
	case "focus":
		if len(parts) != 2 {
			return
		}
		f, ok := plan.ParseFocus(parts[1])
		if !ok {
			return
		}
		sess.ToggleFocus(f)
		b.editKeyboard(chatID, query.Message.MessageID, focusKeyboard(sess))
	case "plan":
		b.handleGeneratePlan(chatID, sess, "")
	case "taste":
		if len(parts) != 2 {
			return
		}
		idx, err := strconv.Atoi(parts[1])
		if err != nil || idx < 0 || idx >= len(TasteOptions) {
			return
		}
		b.handleGeneratePlan(chatID, sess, TasteOptions[idx])
	case "buy":
		if len(parts) != 3 {
			return
		}
		b.handleBuyToggle(chatID, query.Message.MessageID, sess, parts[1], parts[2])
	case "meal":
		if len(parts) != 3 {
			return
		}
		b.handleShowRecipe(chatID, sess, parts[1], parts[2])
	case "step":
		if len(parts) != 4 {
			return
		}
		b.handleStepToggle(chatID, query.Message.MessageID, sess, parts[1], parts[2], parts[3])
	case "fav":
		if len(parts) != 3 {
			return
		}
		b.handleFavToggle(chatID, query.Message.MessageID, sess, parts[1], parts[2])
	case "img":
		if len(parts) != 4 {
			return
		}
		b.handleStepImage(chatID, sess, parts[1], parts[2], parts[3])
	case "speak":
		b.handleSpeak(chatID, sess)
	}
}

func (b *Bot) handleBuyToggle(chatID int64, messageID int, sess *session.Session, catRaw, itemRaw string) {
	p := sess.Plan()
	if p == nil {
		return
	}
	cIdx, err1 := strconv.Atoi(catRaw)
	iIdx, err2 := strconv.Atoi(itemRaw)
	if err1 != nil || err2 != nil || cIdx < 0 || cIdx >= len(p.GroceryList) {
		return
	}
	if iIdx < 0 || iIdx >= len(p.GroceryList[cIdx].Items) {
		return
	}

	sess.TogglePurchased(plan.ItemID(cIdx, iIdx))

	keyboard := shoppingKeyboard(p, sess)
	edit := tgbotapi.NewEditMessageText(chatID, messageID, formatShoppingList(p, sess))
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = &keyboard
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error().Err(err).Msg("failed to edit message")
	}
}

// recipeAt resolves a stored-order day index and meal tag ("L"/"D") to its
// recipe. ok is false for any out-of-range address, e.g. after a replan.
func recipeAt(p *plan.WeeklyPlan, dayRaw, meal string) (plan.Recipe, int, bool) {
	dayIdx, err := strconv.Atoi(dayRaw)
	if err != nil || p == nil || dayIdx < 0 || dayIdx >= len(p.Menu) {
		return plan.Recipe{}, 0, false
	}
	switch meal {
	case "L":
		return p.Menu[dayIdx].Lunch, dayIdx, true
	case "D":
		return p.Menu[dayIdx].Dinner, dayIdx, true
	}
	return plan.Recipe{}, 0, false
}

func (b *Bot) handleShowRecipe(chatID int64, sess *session.Session, dayRaw, meal string) {
	r, dayIdx, ok := recipeAt(sess.Plan(), dayRaw, meal)
	if !ok {
		return
	}
	b.sendWithKeyboard(chatID, formatRecipe(r, sess), recipeKeyboard(r, sess, dayIdx, meal))
}

func (b *Bot) handleStepToggle(chatID int64, messageID int, sess *session.Session, dayRaw, meal, stepRaw string) {
	r, dayIdx, ok := recipeAt(sess.Plan(), dayRaw, meal)
	if !ok {
		return
	}
	stepIdx, err := strconv.Atoi(stepRaw)
	if err != nil || stepIdx < 0 || stepIdx >= len(r.StepKeys) {
		return
	}

	sess.ToggleStep(r.StepKeys[stepIdx])

	keyboard := recipeKeyboard(r, sess, dayIdx, meal)
	edit := tgbotapi.NewEditMessageText(chatID, messageID, formatRecipe(r, sess))
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = &keyboard
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error().Err(err).Msg("failed to edit message")
	}
}

func (b *Bot) handleFavToggle(chatID int64, messageID int, sess *session.Session, dayRaw, meal string) {
	r, dayIdx, ok := recipeAt(sess.Plan(), dayRaw, meal)
	if !ok {
		return
	}

	sess.ToggleFavorite(r)

	keyboard := recipeKeyboard(r, sess, dayIdx, meal)
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, keyboard)
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error().Err(err).Msg("failed to edit keyboard")
	}
}

// handleStepImage generates an illustrative photo for the first not-yet-done
// step and caches it on the session, one generation per step at a time.
func (b *Bot) handleStepImage(chatID int64, sess *session.Session, dayRaw, meal, stepRaw string) {
	r, _, ok := recipeAt(sess.Plan(), dayRaw, meal)
	if !ok {
		return
	}
	stepIdx, err := strconv.Atoi(stepRaw)
	if err != nil || stepIdx < 0 {
		return
	}
	// The entry button always points at step 0; show the first pending step.
	for stepIdx < len(r.Steps)-1 {
		if stepIdx >= len(r.StepKeys) || !sess.StepDone(r.StepKeys[stepIdx]) {
			break
		}
		stepIdx++
	}
	if stepIdx >= len(r.Steps) || stepIdx >= len(r.StepKeys) {
		return
	}
	stepKey := r.StepKeys[stepIdx]

	if st := sess.Image(stepKey); st != nil && st.Illustration != nil {
		b.sendPhoto(chatID, st.Illustration, fmt.Sprintf("%s · 第%d步", r.Name, stepIdx+1))
		return
	}
	if !sess.BeginImage(stepKey) {
		return
	}

	statusID := b.send(chatID, fmt.Sprintf("📷 正在为「%s」第%d步绘制示意图...", r.Name, stepIdx+1))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	il, meta, err := b.chef.StepImage(ctx, r.Name, r.Steps[stepIdx])
	if recErr := b.metricsStore.RecordMeta(meta); recErr != nil {
		b.log.Warn().Err(recErr).Msg("failed to record metrics")
	}
	if err != nil {
		b.log.Error().Err(err).Msg("step image failed")
		sess.FinishImage(stepKey, nil)
		b.edit(chatID, statusID, "❌ 示意图生成失败，请稍后再试。")
		return
	}

	sess.FinishImage(stepKey, &il)
	b.edit(chatID, statusID, fmt.Sprintf("📷 「%s」第%d步示意图：", r.Name, stepIdx+1))
	b.sendPhoto(chatID, &il, "")
}

func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file url: %w", err)
	}
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file fetch returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// send posts a Markdown message and returns its message ID (0 on failure).
func (b *Bot) send(chatID int64, text string) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Error().Err(err).Msg("failed to send message")
		return 0
	}
	return sent.MessageID
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Msg("failed to send message")
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if messageID == 0 {
		b.send(chatID, text)
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error().Err(err).Msg("failed to edit message")
	}
}

func (b *Bot) editKeyboard(chatID int64, messageID int, keyboard tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, keyboard)
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error().Err(err).Msg("failed to edit keyboard")
	}
}

func (b *Bot) sendPhoto(chatID int64, il *plan.Illustration, caption string) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "step.png", Bytes: il.Data})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		b.log.Error().Err(err).Msg("failed to send photo")
	}
}

func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd, args, _ := strings.Cut(text, " ")
	// Strip a bot-name suffix like /plan@qihuang_bot.
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}
	return cmd, strings.TrimSpace(args)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "无"
	}
	return s
}
