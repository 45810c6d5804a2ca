package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"taskboard/internal/command"
	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/manager"
	"taskboard/internal/models"
	"taskboard/internal/render"
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api        *tgbotapi.BotAPI
	sender     messageSender
	dispatcher *command.Dispatcher
	wg         sync.WaitGroup
}

func NewBot(token string, debug bool, d *command.Dispatcher) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания бота: %w", err)
	}
	api.Debug = debug

	return &Bot{api: api, sender: api, dispatcher: d}, nil
}

// Start читает обновления до отмены ctx и дожидается ответов на уже
// принятые сообщения.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("ошибка получения updates: %w", err)
	}

	logger.Info(ctx, "Бот запущен и слушает сообщения", "bot", b.api.Self.UserName)
	b.serve(ctx, updates)
	b.api.StopReceivingUpdates()
	return nil
}

// serve раздаёт сообщения обработчикам до отмены ctx или закрытия канала
// и ждёт завершения уже запущенных.
func (b *Bot) serve(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			b.dispatch(ctx, update.Message)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.handleMessage(ctx, msg)
	}()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user := ""
	if msg.From != nil {
		user = msg.From.UserName
	}
	ctx = logger.WithFields(ctx, "chat", msg.Chat.ID, "user", user)
	logger.Debug(ctx, "Получено сообщение", "text", msg.Text)

	out, err := b.dispatcher.Exec(ctx, msg.Text)
	b.sendMessage(ctx, msg.Chat.ID, formatReply(out, err))
}

// formatReply оборачивает вывод в блок кода, чтобы таблицы не разъезжались.
func formatReply(out string, err error) string {
	switch {
	case errors.Is(err, command.ErrUsage):
		return "❓ " + err.Error() + "\nUse /help for the list of commands."
	case errors.Is(err, models.ErrInvalidArgument):
		return "⚠️ " + err.Error()
	case err != nil:
		return "❌ Error: " + err.Error()
	case out == "":
		return "🤷 Nothing to do. Use /help."
	case strings.Contains(out, "\n"):
		return "```\n" + out + "\n```"
	}
	return "✅ " + out
}

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if strings.HasPrefix(text, "```") {
		msg.ParseMode = "Markdown"
	}

	if _, err := b.sender.Send(msg); err != nil {
		logger.Error(ctx, err, "Ошибка отправки сообщения")
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("")
	if err != nil {
		logger.Error(ctx, err, "Ошибка загрузки конфига")
		os.Exit(1)
	}
	if level, err := logger.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if cfg.Telegram.Token == "" {
		logger.Error(ctx, nil, "Не задан токен бота: telegram.token или "+config.EnvTelegramToken)
		os.Exit(1)
	}

	opts := []manager.Option{}
	if cfg.SeedFile != "" {
		seed, err := config.LoadSeed(cfg.SeedFile, manager.NewID)
		if err != nil {
			logger.Error(ctx, err, "Ошибка загрузки seed-файла")
			os.Exit(1)
		}
		opts = append(opts, manager.WithSeed(seed))
	}
	ws := manager.NewWorkspace(opts...)
	dispatcher := command.NewDispatcher(ws, render.Options{Format: render.FormatTable}).
		WithExporter(command.SnapshotExporter(ws, cfg.ExportPath, false))

	bot, err := NewBot(cfg.Telegram.Token, cfg.Telegram.Debug, dispatcher)
	if err != nil {
		logger.Error(ctx, err, "Ошибка создания бота")
		os.Exit(1)
	}

	logger.Info(ctx, "Бот успешно инициализирован")
	if err := bot.Start(ctx); err != nil {
		logger.Error(ctx, err, "Бот остановлен с ошибкой")
		os.Exit(1)
	}
}
