package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recipe-finder/internal/app"
	"recipe-finder/internal/config"
	"recipe-finder/internal/filter"
	"recipe-finder/internal/mealdb"
	"recipe-finder/internal/metrics"
	"recipe-finder/internal/recipe"
	"recipe-finder/internal/search"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const requestTimeout = 45 * time.Second

// API is the part of the Telegram client the bot uses.
type API interface {
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

var _ API = (*tgbotapi.BotAPI)(nil)

// Bot wraps the Telegram API and the recipe finder.
type Bot struct {
	api    API
	app    *app.App
	cfg    *config.Config
	logger zerolog.Logger
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, finder *app.App, logger zerolog.Logger) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	logger.Info().Str("account", bot.Self.UserName).Msg("authorized on telegram")

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info().Str("response", resp.Description).Msg("webhook set")

	return newBot(bot, cfg, finder, logger), nil
}

func newBot(api API, cfg *config.Config, finder *app.App, logger zerolog.Logger) *Bot {
	return &Bot{
		api:    api,
		app:    finder,
		cfg:    cfg,
		logger: logger.With().Str("component", "telegram").Logger(),
	}
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.logger.Error().Err(err).Msg("error parsing update")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if update.CallbackQuery != nil {
		if !b.cfg.IsAllowed(update.CallbackQuery.From.ID) {
			return
		}
		go b.handleCallbackQuery(update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.cfg.IsAllowed(update.Message.From.ID) {
		b.logger.Warn().
			Int64("user_id", update.Message.From.ID).
			Str("username", update.Message.From.UserName).
			Msg("⚠️ unauthorized access attempt")
		return
	}

	go b.processMessage(update.Message)
}

func owner(chatID int64) string {
	return "chat:" + strconv.FormatInt(chatID, 10)
}

func (b *Bot) session(ctx context.Context, chatID int64) *app.Session {
	return b.app.Session(ctx, owner(chatID))
}

func (b *Bot) send(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
	return sent, err
}

func (b *Bot) edit(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = kb
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to edit message")
	}
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	chatID := msg.Chat.ID
	if !msg.IsCommand() {
		b.handleSearch(ctx, chatID, msg.Text)
		return
	}

	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		b.send(chatID, formatWelcome(b.app.Suggestions()), nil)
	case "search":
		b.handleSearch(ctx, chatID, args)
	case "random":
		b.handleRandom(ctx, chatID)
	case "filter":
		b.handleFilter(ctx, chatID, args)
	case "filters":
		b.send(chatID, esc(formatFilters(b.session(ctx, chatID).Filters())), nil)
	case "clear":
		b.handleClearFilters(ctx, chatID)
	case "history":
		b.handleHistory(ctx, chatID, args)
	case "favorites":
		b.handleFavorites(ctx, chatID)
	case "shopping":
		b.handleShopping(ctx, chatID, args)
	case "theme":
		b.handleTheme(ctx, chatID, args)
	case "status":
		b.handleStatus(ctx, chatID)
	default:
		b.send(chatID, "Unknown command. Send /help for the list.", nil)
	}
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, query string) {
	if strings.TrimSpace(query) == "" {
		b.send(chatID, "Send me an ingredient or dish name, e.g. `chicken rice`.", nil)
		return
	}

	sent, err := b.send(chatID, "🔎 *Searching...*", nil)
	if err != nil {
		return
	}

	s := b.session(ctx, chatID)
	res, err := s.Resolve(ctx, query)
	if res.Stale {
		b.edit(chatID, sent.MessageID, "⏭ _Superseded by a newer search._", nil)
		return
	}

	var agg *search.AggregateError
	switch {
	case errors.As(err, &agg):
		b.edit(chatID, sent.MessageID, formatError(mealdb.UserMessage(agg)), nil)
		return
	case err != nil:
		b.edit(chatID, sent.MessageID, formatError("Failed to fetch recipes. Please try again."), nil)
		return
	case errors.Is(res.Err(), search.ErrNoResults):
		b.edit(chatID, sent.MessageID, formatNoResults(res.Query), nil)
		return
	}

	s.SetResultsHandle(sent.MessageID)
	b.showResults(chatID, sent.MessageID, s)
}

// showResults renders the session's filtered results into messageID.
func (b *Bot) showResults(chatID int64, messageID int, s *app.Session) {
	recipes := s.FilteredResults()
	b.edit(chatID, messageID, formatResults(s.ResultsQuery(), recipes, s.Filters(), s.IsFavorite), resultsKeyboard(recipes))
}

func (b *Bot) handleRandom(ctx context.Context, chatID int64) {
	r, err := b.app.Catalog().FetchRandom(ctx)
	if err != nil {
		b.send(chatID, formatError(mealdb.UserMessage(err)), nil)
		return
	}
	b.sendRecipe(chatID, b.session(ctx, chatID), r)
}

func (b *Bot) sendRecipe(chatID int64, s *app.Session, r recipe.Recipe) {
	kb := recipeKeyboard(r, s.IsFavorite(r.ID))
	b.send(chatID, formatRecipe(r), &kb)
}

func (b *Bot) handleFilter(ctx context.Context, chatID int64, args string) {
	s := b.session(ctx, chatID)
	f, err := filter.Parse(s.Filters(), args)
	if err != nil {
		b.send(chatID, "⚠️ "+esc(err.Error())+"\nExample: /filter time=quick difficulty=easy category=dinner", nil)
		return
	}
	b.applyFilters(ctx, chatID, s, f)
}

func (b *Bot) handleClearFilters(ctx context.Context, chatID int64) {
	s := b.session(ctx, chatID)
	b.applyFilters(ctx, chatID, s, filter.Default())
}

func (b *Bot) applyFilters(ctx context.Context, chatID int64, s *app.Session, f filter.Filters) {
	if err := s.SetFilters(ctx, f); err != nil {
		b.logger.Error().Err(err).Msg("failed to save filters")
	}
	b.send(chatID, "🎛 "+esc(formatFilters(f)), nil)
	if handle := s.ResultsHandle(); handle != 0 && len(s.Results()) > 0 {
		b.showResults(chatID, handle, s)
	}
}

func (b *Bot) handleHistory(ctx context.Context, chatID int64, args string) {
	s := b.session(ctx, chatID)
	if args == "clear" {
		if err := s.ClearHistory(ctx); err != nil {
			b.logger.Error().Err(err).Msg("failed to clear history")
		}
		b.send(chatID, "🗑 Search history cleared.", nil)
		return
	}
	entries := s.History()
	b.send(chatID, formatHistory(entries), historyKeyboard(entries))
}

func (b *Bot) handleFavorites(ctx context.Context, chatID int64) {
	favs := b.session(ctx, chatID).Favorites()
	b.send(chatID, formatFavorites(favs), resultsKeyboard(favs))
}

func (b *Bot) handleShopping(ctx context.Context, chatID int64, args string) {
	s := b.session(ctx, chatID)
	sub, rest, _ := strings.Cut(args, " ")
	rest = strings.TrimSpace(rest)

	if sub == "clear" {
		if err := s.ClearShoppingList(ctx); err != nil {
			b.logger.Error().Err(err).Msg("failed to clear shopping list")
		}
		b.send(chatID, "🗑 Shopping list reset.", nil)
		return
	}

	list, err := s.ShoppingList(ctx)
	if errors.Is(err, app.ErrNoRecipes) {
		b.send(chatID, "🛒 Save some favorites first, then I'll build the shopping list.", nil)
		return
	} else if err != nil {
		b.send(chatID, formatError(err.Error()), nil)
		return
	}

	switch sub {
	case "":
	case "add":
		if _, err := list.AddCustom(rest); err != nil {
			b.send(chatID, "Usage: /shopping add <item>", nil)
			return
		}
	case "check":
		n, _ := strconv.Atoi(rest)
		id, ok := list.EntryID(n)
		if !ok {
			b.send(chatID, "Usage: /shopping check <number>", nil)
			return
		}
		list.Toggle(id)
	case "export":
		b.api.Send(tgbotapi.NewMessage(chatID, list.Text(time.Now())))
		return
	default:
		b.send(chatID, "Usage: /shopping [add <item> | check <n> | export | clear]", nil)
		return
	}

	if sub != "" {
		if err := s.SaveShoppingList(ctx, list); err != nil {
			b.logger.Error().Err(err).Msg("failed to save shopping list")
		}
	}
	b.send(chatID, formatShopping(list), nil)
}

func (b *Bot) handleTheme(ctx context.Context, chatID int64, args string) {
	s := b.session(ctx, chatID)
	var (
		theme = args
		err   error
	)
	if theme == "" {
		theme, err = s.ToggleTheme(ctx)
	} else {
		err = s.SetTheme(ctx, theme)
	}
	if err != nil {
		b.send(chatID, "⚠️ "+esc(err.Error()), nil)
		return
	}
	icon := "☀️"
	if theme == app.ThemeDark {
		icon = "🌙"
	}
	b.send(chatID, fmt.Sprintf("%s Theme set to *%s*.", icon, theme), nil)
}

func (b *Bot) handleStatus(ctx context.Context, chatID int64) {
	usage, err := b.app.Metrics().GetDailyUsage(ctx, 7)
	if err != nil {
		b.send(chatID, "❌ Error fetching metrics.", nil)
		return
	}
	b.send(chatID, formatStatus(usage, metrics.GetSysHealth(b.cfg.DatabasePath)), nil)
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	chatID := query.Message.Chat.ID
	s := b.session(ctx, chatID)

	// "d|<id>", "f|<id>", "p|<id>", "h|<index>", "hc|", "b|"
	action, arg, ok := strings.Cut(query.Data, "|")
	if !ok {
		b.api.Request(tgbotapi.NewCallback(query.ID, ""))
		return
	}

	notice := ""
	switch action {
	case "d":
		fallback, _ := s.FindResult(arg)
		if fallback.ID == "" {
			fallback.ID = arg
		}
		b.api.Request(tgbotapi.NewCallback(query.ID, ""))
		b.sendRecipe(chatID, s, b.app.GetDetails(ctx, arg, fallback))
		return

	case "f":
		r, found := s.FindResult(arg)
		if !found {
			r = b.app.GetDetails(ctx, arg, recipe.Recipe{ID: arg})
		}
		added, err := s.ToggleFavorite(ctx, r)
		switch {
		case err != nil:
			notice = "Could not update favorites"
		case added:
			notice = "❤️ Saved to favorites"
		default:
			notice = "Removed from favorites"
		}
		kb := recipeKeyboard(r, s.IsFavorite(r.ID))
		b.api.Send(tgbotapi.NewEditMessageReplyMarkup(chatID, query.Message.MessageID, kb))

	case "p":
		r, _ := s.FindResult(arg)
		if r.SourceURL == "" {
			r = b.app.GetDetails(ctx, arg, r)
		}
		b.api.Request(tgbotapi.NewCallback(query.ID, ""))
		p, err := b.app.Preview(ctx, r)
		if err != nil {
			b.send(chatID, "⚠️ Could not load the source page.", nil)
			return
		}
		text := fmt.Sprintf("📄 *%s*\n%s\n\n%s", esc(p.Title), esc(p.Description), esc(p.Excerpt))
		b.send(chatID, clip(text), nil)
		return

	case "h":
		i, err := strconv.Atoi(arg)
		entries := s.History()
		if err != nil || i < 0 || i >= len(entries) {
			notice = "That search is no longer in your history"
			break
		}
		b.api.Request(tgbotapi.NewCallback(query.ID, ""))
		b.handleSearch(ctx, chatID, entries[i])
		return

	case "hc":
		if err := s.ClearHistory(ctx); err != nil {
			b.logger.Error().Err(err).Msg("failed to clear history")
		}
		notice = "History cleared"
		b.edit(chatID, query.Message.MessageID, formatHistory(nil), nil)

	case "b":
		// Closing a detail view returns focus to the results it came from.
		b.api.Request(tgbotapi.NewDeleteMessage(chatID, query.Message.MessageID))
		if handle := s.ResultsHandle(); handle != 0 {
			msg := tgbotapi.NewMessage(chatID, "⬆️ Back to your results")
			msg.ReplyToMessageID = handle
			b.api.Send(msg)
		}
	}

	b.api.Request(tgbotapi.NewCallback(query.ID, notice))
}
