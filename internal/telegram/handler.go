package telegram

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/dmtrv/subjectquiz/internal/service"
)

// Bot translates Telegram updates into quiz engine events and renders
// the engine's directives back as messages and inline keyboards.
type Bot struct {
	api                *tgbotapi.BotAPI
	engine             *service.Engine
	leaderboardService service.LeaderboardService
}

func NewBot(token string, engine *service.Engine, leaderboardService service.LeaderboardService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:                api,
		engine:             engine,
		leaderboardService: leaderboardService,
	}, nil
}

// Start runs the long-polling update loop. It blocks until the updates
// channel closes.
func (b *Bot) Start() {
	log.Info().Str("account", b.api.Self.UserName).Msg("authorised, polling for updates")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for update := range b.api.GetUpdatesChan(u) {
		b.handleUpdate(update)
	}
}

// StartWebhook registers the webhook and serves updates over HTTP.
// It blocks for the lifetime of the listener.
func (b *Bot) StartWebhook(webhookURL, listenAddr string) error {
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return err
	}
	if _, err := b.api.Request(wh); err != nil {
		return err
	}

	log.Info().
		Str("account", b.api.Self.UserName).
		Str("url", webhookURL).
		Str("listen", listenAddr).
		Msg("authorised, serving webhook updates")

	updates := b.api.ListenForWebhook("/" + b.api.Token)
	go func() {
		for update := range updates {
			b.handleUpdate(update)
		}
	}()

	return http.ListenAndServe(listenAddr, nil)
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		b.handleCommand(update.Message)
	}
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		// Entering the menu abandons any quiz in progress.
		b.engine.Cancel(message.From.ID)
		b.sendSubjectMenu(chatID)
	case "cancel":
		b.engine.Cancel(message.From.ID)
		b.sendMessage(chatID, "Quiz cancelled. Pick a subject with /start.")
	case "leaderboard":
		b.sendLeaderboard(chatID)
	case "help":
		b.sendMessage(chatID, "Pick a subject with /start, answer the questions and "+
			"press \"Next\" to get the following batch. /cancel drops the current quiz.")
	default:
		b.sendMessage(chatID, "Unknown command. Try /start.")
	}
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	userID := callback.From.ID
	data := callback.Data

	// Stop the client-side spinner before any other work.
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Error().Err(err).Msg("failed to answer callback query")
	}

	switch {
	case strings.HasPrefix(data, "subj|"):
		b.selectSubject(callback, strings.TrimPrefix(data, "subj|"))
	case data == "random":
		b.selectSubject(callback, service.RandomSubject)
	case strings.HasPrefix(data, "ans|"):
		b.submitAnswer(callback, data)
	case data == "next":
		b.requestNextBatch(callback)
	case data == "leaderboard":
		b.sendLeaderboard(chatID)
	case data == "menu":
		b.engine.Cancel(userID)
		b.sendSubjectMenu(chatID)
	default:
		log.Warn().Str("data", data).Msg("unrecognized callback data")
		b.sendMessage(chatID, "Something went wrong, try /start.")
	}
}

func (b *Bot) selectSubject(callback *tgbotapi.CallbackQuery, choice string) {
	chatID := callback.Message.Chat.ID

	directives, err := b.engine.SelectSubject(callback.From.ID, choice)
	if err != nil {
		b.sendRejection(chatID, err)
		return
	}
	b.render(callback, directives)
}

func (b *Bot) submitAnswer(callback *tgbotapi.CallbackQuery, data string) {
	chatID := callback.Message.Chat.ID

	parts := strings.Split(data, "|")
	if len(parts) != 3 {
		log.Warn().Str("data", data).Msg("malformed answer callback")
		return
	}
	questionIndex, err := strconv.Atoi(parts[1])
	if err != nil {
		log.Warn().Str("data", data).Msg("malformed answer callback")
		return
	}

	directives, err := b.engine.SubmitAnswer(callback.From.ID, questionIndex, parts[2])
	if err != nil {
		b.sendRejection(chatID, err)
		return
	}
	b.render(callback, directives)
}

func (b *Bot) requestNextBatch(callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID

	directives, err := b.engine.RequestNextBatch(callback.From.ID)
	if err != nil {
		b.sendRejection(chatID, err)
		return
	}
	b.render(callback, directives)
}

// render plays a directive sequence back to the chat the event came from.
func (b *Bot) render(callback *tgbotapi.CallbackQuery, directives []service.Directive) {
	chatID := callback.Message.Chat.ID

	for _, directive := range directives {
		switch d := directive.(type) {
		case service.SendBatch:
			b.renderBatch(chatID, d)
		case service.SendFeedback:
			b.renderFeedback(callback, d)
		case service.SendCompletion:
			b.renderCompletion(chatID, callback.From, d)
		default:
			log.Error().Type("directive", directive).Msg("unhandled directive")
		}
	}
}

func (b *Bot) renderBatch(chatID int64, batch service.SendBatch) {
	for _, question := range batch.Questions {
		msg := tgbotapi.NewMessage(chatID, question.Text)

		var buttons []tgbotapi.InlineKeyboardButton
		for _, opt := range question.Options {
			data := fmt.Sprintf("ans|%d|%s", question.GlobalIndex, opt.Letter)
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(opt.Label, data))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))

		if _, err := b.api.Send(msg); err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send question")
		}
	}

	if batch.HasMore {
		prompt := tgbotapi.NewMessage(chatID, "Click to continue:")
		prompt.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Next 10", "next"),
			),
		)
		if _, err := b.api.Send(prompt); err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send next-batch prompt")
		}
	}
}

// renderFeedback edits the answered question's message in place, so the
// chat history shows the verdict instead of the buttons.
func (b *Bot) renderFeedback(callback *tgbotapi.CallbackQuery, feedback service.SendFeedback) {
	verdict := "✅ Correct!"
	if !feedback.Correct {
		verdict = "❌ Wrong!"
	}
	text := fmt.Sprintf("%s\nQuestion: %s\nYou chose: %s\nCorrect answer: %s",
		verdict, feedback.QuestionText, feedback.ChosenLabel, feedback.CorrectLabel)

	edit := tgbotapi.NewEditMessageText(callback.Message.Chat.ID, callback.Message.MessageID, text)
	if _, err := b.api.Send(edit); err != nil {
		log.Warn().Err(err).Msg("failed to edit question message, sending feedback instead")
		b.sendMessage(callback.Message.Chat.ID, text)
	}
}

func (b *Bot) renderCompletion(chatID int64, user *tgbotapi.User, completion service.SendCompletion) {
	text := fmt.Sprintf("🏁 Quiz finished!\n\n📊 Score: %d/%d", completion.Score, completion.Total)
	if completion.Total > 0 {
		percentage := (completion.Score * 100) / completion.Total
		text += fmt.Sprintf("\n📈 Correct: %d%%", percentage)

		if b.leaderboardService.AddEntry(user.ID, user.UserName, user.FirstName, completion.Score, completion.Total) {
			if position, _ := b.leaderboardService.GetUserPosition(user.ID); position != -1 {
				text += fmt.Sprintf("\n\n🎉 New personal best — place %d on the leaderboard!", position)
			}
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Play again", "menu"),
			tgbotapi.NewInlineKeyboardButtonData("🏆 Leaderboard", "leaderboard"),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send completion message")
	}
}

// sendRejection maps a typed engine failure to a user-visible message.
func (b *Bot) sendRejection(chatID int64, err error) {
	qe := service.AsQuizError(err)
	if qe == nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("unexpected engine error")
		b.sendMessage(chatID, "Something went wrong, try /start.")
		return
	}

	switch qe.Code {
	case service.ErrUnknownSubject:
		b.sendMessage(chatID, "That subject has no questions. Pick another one with /start.")
	case service.ErrNoQuestionsAvailable, service.ErrNoQuestionsPrepared:
		b.sendMessage(chatID, "No questions are available right now.")
	case service.ErrBatchIncomplete:
		b.sendMessage(chatID, fmt.Sprintf(
			"Answer all questions of this batch first — %d left.", qe.Remaining))
	case service.ErrUnknownQuestion:
		b.sendMessage(chatID, "That question belongs to an old quiz. Start a new one with /start.")
	case service.ErrInvalidEvent:
		b.sendMessage(chatID, "Nothing to do here. Start a quiz with /start.")
	default:
		log.Error().Str("code", string(qe.Code)).Msg("unmapped quiz error code")
		b.sendMessage(chatID, "Something went wrong, try /start.")
	}
}

func (b *Bot) sendSubjectMenu(chatID int64) {
	subjects := b.engine.Subjects()
	if len(subjects) == 0 {
		b.sendMessage(chatID, "No subjects available right now, sorry.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, subject := range subjects {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(subject, "subj|"+subject),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🎲 Random mix", "random"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏆 Leaderboard", "leaderboard"),
	))

	msg := tgbotapi.NewMessage(chatID, "Choose a subject:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send subject menu")
	}
}

func (b *Bot) sendLeaderboard(chatID int64) {
	top := b.leaderboardService.GetTop(10)
	if len(top) == 0 {
		b.sendMessage(chatID, "🏆 Leaderboard\n\nNo results yet. Be the first! 🎯")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 Top 10 players\n\n")
	for i, entry := range top {
		name := entry.FirstName
		if entry.Username != "" {
			name = "@" + entry.Username
		}

		medal := "🔸"
		switch i {
		case 0:
			medal = "🥇"
		case 1:
			medal = "🥈"
		case 2:
			medal = "🥉"
		}

		sb.WriteString(fmt.Sprintf("%s %d. %s — %d%% (%d/%d), %s\n",
			medal, i+1, name, entry.Percentage, entry.Score, entry.Total, entry.Date))
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Start a quiz", "menu"),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send leaderboard")
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}
