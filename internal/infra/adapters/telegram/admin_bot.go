package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-post-scheduler/internal/config"
	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/domain/ports/repository"
	"telegram-post-scheduler/internal/infra/logging"
	"telegram-post-scheduler/internal/usecase"
)

// Menu button labels double as message-text commands.
const (
	menuList   = "📋 List Messages"
	menuAdd    = "➕ Add Message"
	menuRemove = "❌ Remove Message"
	menuSend   = "🚀 Send Now"
)

// AdminBot is the conversational front end. It owns no delivery or
// scheduling logic; it collects fully-populated message definitions and
// calls into the use cases.
type AdminBot struct {
	bot      *tgbotapi.BotAPI
	cfg      *config.BotConfig
	messages usecase.MessageUseCase
	delivery usecase.DeliveryUseCase
	states   repository.StateRepository
	mediaDir string
	log      *zerolog.Logger

	adminIDs      map[int64]struct{}
	cancelPolling context.CancelFunc
}

func NewAdminBot(
	cfg *config.BotConfig,
	messages usecase.MessageUseCase,
	delivery usecase.DeliveryUseCase,
	states repository.StateRepository,
	mediaDir string,
	logger *zerolog.Logger,
) (*AdminBot, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	adminMap := make(map[int64]struct{}, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	compLog := logger.With().Str("component", "AdminBot").Logger()
	return &AdminBot{
		bot:      bot,
		cfg:      cfg,
		messages: messages,
		delivery: delivery,
		states:   states,
		mediaDir: mediaDir,
		log:      &compLog,
		adminIDs: adminMap,
	}, nil
}

// BotAPI exposes the underlying session so the sender client can share it
// when no separate sender token is configured.
func (b *AdminBot) BotAPI() *tgbotapi.BotAPI { return b.bot }

// StartPolling processes updates sequentially: wizard steps depend on
// arrival order, so there is deliberately no worker fan-out here.
func (b *AdminBot) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	b.cancelPolling = cancel

	b.log.Info().Str("bot", b.bot.Self.UserName).Msg("admin bot polling")
	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			if err := b.handleUpdate(ctx, update); err != nil {
				b.log.Error().Err(err).Msg("update handling failed")
			}
		}
	}
}

func (b *AdminBot) StopPolling() {
	if b.cancelPolling != nil {
		b.cancelPolling()
	}
}

// NotifyAdmins sends the text to every configured admin; used for the
// scheduled-run digests.
func (b *AdminBot) NotifyAdmins(ctx context.Context, text string) error {
	var firstErr error
	for _, id := range b.cfg.AdminIDs {
		if _, err := b.bot.Send(tgbotapi.NewMessage(id, text)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (b *AdminBot) isAdmin(tgID int64) bool {
	_, ok := b.adminIDs[tgID]
	return ok
}

func (b *AdminBot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		cq := update.CallbackQuery
		if !b.isAdmin(cq.From.ID) {
			return nil
		}
		// Acknowledge before doing any work so the button stops spinning.
		_, _ = b.bot.Request(tgbotapi.NewCallback(cq.ID, ""))
		return b.handleAction(logging.WithAdminID(ctx, cq.From.ID), cq, decodeAction(cq.Data))
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	if !b.isAdmin(msg.From.ID) {
		return b.reply(msg.Chat.ID, "⛔ Access denied.")
	}
	ctx = logging.WithAdminID(ctx, msg.From.ID)

	switch msg.Text {
	case "/start":
		return b.sendMenu(msg.Chat.ID, "Welcome to the post scheduler.")
	case "/cancel":
		_ = b.states.ClearState(ctx, msg.From.ID)
		return b.sendMenu(msg.Chat.ID, "Cancelled.")
	case menuList, "/list":
		return b.handleList(ctx, msg.Chat.ID)
	case menuAdd, "/add":
		return b.handleAdd(ctx, msg)
	case menuRemove, "/remove":
		return b.handleRemoveMenu(ctx, msg.Chat.ID)
	case menuSend, "/send":
		return b.handleSendMenu(ctx, msg.Chat.ID)
	}

	return b.handleConversation(ctx, msg)
}

func (b *AdminBot) sendMenu(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuList),
			tgbotapi.NewKeyboardButton(menuAdd),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuRemove),
			tgbotapi.NewKeyboardButton(menuSend),
		),
	)
	kb.ResizeKeyboard = true
	msg.ReplyMarkup = kb
	_, err := b.bot.Send(msg)
	return err
}

func (b *AdminBot) reply(chatID int64, text string) error {
	_, err := b.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// ----- listing -----

func (b *AdminBot) handleList(ctx context.Context, chatID int64) error {
	snap := b.messages.List(ctx)
	if snap.Len() == 0 {
		return b.sendMenu(chatID, "No messages configured.")
	}
	var sb strings.Builder
	sb.WriteString("Configured messages:\n\n")
	for _, id := range snap.Order {
		def := snap.Defs[id]
		fmt.Fprintf(&sb, "🆔 %s\n", id)
		fmt.Fprintf(&sb, "📝 %s\n", truncate(def.Text, 100))
		fmt.Fprintf(&sb, "👥 %s\n", strings.Join(def.Recipients, ", "))
		fmt.Fprintf(&sb, "🖼 %d image(s) | 🕒 %s\n", len(def.ImagePaths), def.Schedule.Describe())
		sb.WriteString(strings.Repeat("-", 20) + "\n")
	}
	return b.sendMenu(chatID, sb.String())
}

// ----- add wizard -----

func (b *AdminBot) handleAdd(ctx context.Context, msg *tgbotapi.Message) error {
	st := &repository.ConversationState{Step: repository.StepText}
	if err := b.states.SetState(ctx, msg.From.ID, st); err != nil {
		return err
	}
	return b.reply(msg.Chat.ID, "Step 1: send me the text for the message.")
}

func (b *AdminBot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	st, err := b.states.GetState(ctx, msg.From.ID)
	if errors.Is(err, domain.ErrConversationNotFound) {
		return b.sendMenu(msg.Chat.ID, "Pick an action:")
	}
	if err != nil {
		return err
	}

	switch st.Step {
	case repository.StepText:
		st.Draft.Text = msg.Text
		st.Step = repository.StepImages
		if err := b.states.SetState(ctx, msg.From.ID, st); err != nil {
			return err
		}
		return b.promptImages(msg.Chat.ID, "Step 2: send one or more images, or press Done.")

	case repository.StepImages:
		path, err := b.downloadMedia(msg)
		if err != nil {
			b.log.Warn().Err(err).Msg("media download failed")
			return b.promptImages(msg.Chat.ID, "Could not save that file. Send another image or press Done.")
		}
		if path == "" {
			return b.promptImages(msg.Chat.ID, "Send an image, or press Done to continue.")
		}
		st.Draft.ImagePaths = append(st.Draft.ImagePaths, path)
		if err := b.states.SetState(ctx, msg.From.ID, st); err != nil {
			return err
		}
		return b.promptImages(msg.Chat.ID, fmt.Sprintf("✅ %d media saved. Send more or press Done.", len(st.Draft.ImagePaths)))

	case repository.StepRecipients:
		for _, r := range strings.Split(msg.Text, ",") {
			if r = strings.TrimSpace(r); r != "" {
				st.Draft.Recipients = append(st.Draft.Recipients, r)
			}
		}
		st.Step = repository.StepScheduleType
		if err := b.states.SetState(ctx, msg.From.ID, st); err != nil {
			return err
		}
		return b.promptScheduleType(msg.Chat.ID)

	case repository.StepScheduleTime:
		at, err := model.ParseTimeOfDay(strings.TrimSpace(msg.Text))
		if err != nil {
			return b.reply(msg.Chat.ID, "❌ Invalid time format, use HH:MM (e.g. 09:00):")
		}
		st.Draft.Schedule.Time = at
		if st.Draft.Schedule.Type == model.ScheduleWeekly {
			st.Step = repository.StepScheduleDay
			if err := b.states.SetState(ctx, msg.From.ID, st); err != nil {
				return err
			}
			return b.promptWeekday(msg.Chat.ID)
		}
		return b.finalizeAdd(ctx, msg.Chat.ID, msg.From.ID, st)

	case repository.StepScheduleDay:
		day, err := model.ParseWeekday(msg.Text)
		if err != nil {
			return b.reply(msg.Chat.ID, "❌ Pick a valid weekday from the keyboard.")
		}
		st.Draft.Schedule.Day = day
		return b.finalizeAdd(ctx, msg.Chat.ID, msg.From.ID, st)
	}

	return b.sendMenu(msg.Chat.ID, "Pick an action:")
}

func (b *AdminBot) finalizeAdd(ctx context.Context, chatID, tgID int64, st *repository.ConversationState) error {
	id, err := b.messages.Add(ctx, &st.Draft)
	if err != nil {
		_ = b.states.ClearState(ctx, tgID)
		return b.sendMenu(chatID, fmt.Sprintf("❌ Could not save the message: %v", err))
	}
	_ = b.states.ClearState(ctx, tgID)
	return b.sendMenu(chatID, fmt.Sprintf("✅ Added message %s.", id))
}

func (b *AdminBot) promptImages(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Done", cbImagesDone)),
	)
	_, err := b.bot.Send(msg)
	return err
}

func (b *AdminBot) promptScheduleType(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Step 4: choose a schedule for this message:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Daily", cbSchedDaily),
			tgbotapi.NewInlineKeyboardButtonData("📅 Weekly", cbSchedWeekly),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 No schedule (manual)", cbSchedNone),
		),
	)
	_, err := b.bot.Send(msg)
	return err
}

func (b *AdminBot) promptWeekday(chatID int64) error {
	days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	rows := make([][]tgbotapi.KeyboardButton, 0, 2)
	for _, half := range [][]string{days[:4], days[4:]} {
		var row []tgbotapi.KeyboardButton
		for _, d := range half {
			row = append(row, tgbotapi.NewKeyboardButton(d))
		}
		rows = append(rows, row)
	}
	msg := tgbotapi.NewMessage(chatID, "Step 6: choose the day of the week:")
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	msg.ReplyMarkup = kb
	_, err := b.bot.Send(msg)
	return err
}

// downloadMedia stores an uploaded photo/document under the media dir and
// returns the saved path, or "" when the message carried no media.
func (b *AdminBot) downloadMedia(msg *tgbotapi.Message) (string, error) {
	var fileID, ext string
	switch {
	case len(msg.Photo) > 0:
		fileID = msg.Photo[len(msg.Photo)-1].FileID // largest size last
		ext = ".jpg"
	case msg.Document != nil:
		fileID = msg.Document.FileID
		ext = filepath.Ext(msg.Document.FileName)
		if ext == "" {
			ext = ".bin"
		}
	default:
		return "", nil
	}

	url, err := b.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", err
	}
	resp, err := http.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download media: status %s", resp.Status)
	}

	if err := os.MkdirAll(b.mediaDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(b.mediaDir, uuid.NewString()+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// ----- remove -----

func (b *AdminBot) handleRemoveMenu(ctx context.Context, chatID int64) error {
	snap := b.messages.List(ctx)
	if snap.Len() == 0 {
		return b.sendMenu(chatID, "No messages to remove.")
	}
	var sb strings.Builder
	sb.WriteString("Select a message to remove:\n\n")
	for _, id := range snap.Order {
		fmt.Fprintf(&sb, "🆔 %s: %s\n", id, truncate(snap.Defs[id].Text, 50))
	}
	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = idKeyboard(snap.Order, "❌", encodeRemove)
	_, err := b.bot.Send(msg)
	return err
}

// ----- send now -----

func (b *AdminBot) handleSendMenu(ctx context.Context, chatID int64) error {
	snap := b.messages.List(ctx)
	if snap.Len() == 0 {
		return b.sendMenu(chatID, "No messages configured.")
	}
	msg := tgbotapi.NewMessage(chatID, "Select a message to send now:")
	msg.ReplyMarkup = idKeyboard(snap.Order, "🚀", encodeSend)
	_, err := b.bot.Send(msg)
	return err
}

// idKeyboard renders one "<emoji> ALL" row followed by two-per-row id
// buttons, payloads built by encode.
func idKeyboard(ids []string, emoji string, encode func(string) string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(emoji+" ALL", encode(cbAll)),
		),
	}
	var row []tgbotapi.InlineKeyboardButton
	for _, id := range ids {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(emoji+" "+id, encode(id)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ----- action dispatch -----

func (b *AdminBot) handleAction(ctx context.Context, cq *tgbotapi.CallbackQuery, act action) error {
	chatID := cq.Message.Chat.ID
	tgID := cq.From.ID

	switch act.kind {
	case actionRemove:
		files, err := b.messages.Remove(ctx, act.messageID)
		if err != nil {
			return b.edit(chatID, cq.Message.MessageID, fmt.Sprintf("❌ %v", err))
		}
		status := fmt.Sprintf("✅ Message %s removed.", act.messageID)
		if files > 0 {
			status += fmt.Sprintf("\n🗑 Deleted %d media file(s).", files)
		}
		return b.edit(chatID, cq.Message.MessageID, status)

	case actionRemoveAll:
		n, files, err := b.messages.RemoveAll(ctx)
		if err != nil {
			return b.edit(chatID, cq.Message.MessageID, fmt.Sprintf("❌ %v", err))
		}
		status := fmt.Sprintf("✅ Removed %d message(s).", n)
		if files > 0 {
			status += fmt.Sprintf("\n🗑 Deleted %d media file(s).", files)
		}
		return b.edit(chatID, cq.Message.MessageID, status)

	case actionSend:
		return b.runDelivery(ctx, chatID, cq.Message.MessageID, act.messageID)

	case actionSendAll:
		return b.runDelivery(ctx, chatID, cq.Message.MessageID, usecase.DeliverAll)

	case actionImagesDone:
		st, err := b.states.GetState(ctx, tgID)
		if err != nil || st.Step != repository.StepImages {
			return b.edit(chatID, cq.Message.MessageID, "Operation not valid anymore.")
		}
		st.Step = repository.StepRecipients
		if err := b.states.SetState(ctx, tgID, st); err != nil {
			return err
		}
		return b.edit(chatID, cq.Message.MessageID, "Step 3: send the recipients (comma-separated ids, @usernames or chat:topic pairs).")

	case actionScheduleNone, actionScheduleDaily, actionScheduleWeekly:
		st, err := b.states.GetState(ctx, tgID)
		if err != nil || st.Step != repository.StepScheduleType {
			return b.edit(chatID, cq.Message.MessageID, "Operation not valid anymore.")
		}
		if act.kind == actionScheduleNone {
			st.Draft.Schedule = nil
			return b.finalizeAdd(ctx, chatID, tgID, st)
		}
		typ := model.ScheduleDaily
		if act.kind == actionScheduleWeekly {
			typ = model.ScheduleWeekly
		}
		st.Draft.Schedule = &model.Schedule{Type: typ}
		st.Step = repository.StepScheduleTime
		if err := b.states.SetState(ctx, tgID, st); err != nil {
			return err
		}
		return b.edit(chatID, cq.Message.MessageID, "Step 5: send the time (HH:MM, e.g. 09:00):")
	}

	b.log.Debug().Str("data", cq.Data).Msg("unknown callback payload")
	return nil
}

func (b *AdminBot) edit(chatID int64, messageID int, text string) error {
	_, err := b.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

// runDelivery drives an on-demand delivery in its own goroutine, streaming a
// rolling tail of the log into the triggering chat message.
func (b *AdminBot) runDelivery(ctx context.Context, chatID int64, statusMsgID int, target string) error {
	if err := b.edit(chatID, statusMsgID, fmt.Sprintf("🚀 Starting delivery for %s...", target)); err != nil {
		return err
	}

	go func() {
		var lines []string
		onLine := func(line string) {
			lines = append(lines, line)
			if len(lines)%3 != 0 {
				return
			}
			tail := lines
			if len(tail) > 10 {
				tail = tail[len(tail)-10:]
			}
			_ = b.edit(chatID, statusMsgID,
				fmt.Sprintf("🚀 Delivery in progress (%s)...\n\n%s", target, strings.Join(tail, "\n")))
		}

		res, err := b.delivery.DeliverByID(ctx, target, onLine)
		if err != nil {
			b.log.Error().Err(err).Str("target", target).Msg("on-demand delivery failed")
			_ = b.edit(chatID, statusMsgID, fmt.Sprintf("❌ Delivery failed for %s: %v", target, err))
			return
		}
		full := strings.Join(res.Lines, "\n")
		_ = b.edit(chatID, statusMsgID,
			truncate(fmt.Sprintf("✅ Delivery finished for %s (%s).\n\n%s", target, res.Summary(), full), 3500))
	}()
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
