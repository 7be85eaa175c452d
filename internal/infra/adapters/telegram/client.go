package telegram

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/ports/adapter"
)

var _ adapter.MessengerClient = (*Client)(nil)

// Client implements the messenger capability on top of the Bot API. It is
// not safe for concurrent sends from multiple goroutines against the same
// recipient ordering guarantees, which is fine: the delivery engine sends
// strictly sequentially.
type Client struct {
	bot *tgbotapi.BotAPI
}

func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, errors.New("sender token is empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Client{bot: bot}, nil
}

// ResolveEntity resolves a numeric chat id or a username into a chat. A
// positive numeric id that fails is retried with the supergroup marker
// prefix, since ids are often shared with it stripped.
func (c *Client) ResolveEntity(ctx context.Context, token string) (adapter.Destination, error) {
	if err := ctx.Err(); err != nil {
		return adapter.Destination{}, err
	}

	if id, err := strconv.ParseInt(token, 10, 64); err == nil {
		chat, err := c.getChatByID(id)
		if err != nil && id > 0 {
			if marked, err2 := strconv.ParseInt("-100"+token, 10, 64); err2 == nil {
				if retry, err3 := c.getChatByID(marked); err3 == nil {
					return adapter.Destination{ChatID: retry.ID, Username: retry.UserName}, nil
				}
			}
		}
		if err != nil {
			return adapter.Destination{}, fmt.Errorf("get chat %s: %w", token, err)
		}
		return adapter.Destination{ChatID: chat.ID, Username: chat.UserName}, nil
	}

	uname := token
	if !strings.HasPrefix(uname, "@") {
		uname = "@" + uname
	}
	chat, err := c.bot.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{SuperGroupUsername: uname},
	})
	if err != nil {
		return adapter.Destination{}, fmt.Errorf("get chat %s: %w", token, err)
	}
	return adapter.Destination{ChatID: chat.ID, Username: chat.UserName}, nil
}

func (c *Client) getChatByID(id int64) (tgbotapi.Chat, error) {
	return c.bot.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: id},
	})
}

func (c *Client) SendMessage(ctx context.Context, dest adapter.Destination, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(dest.ChatID, text)
	msg.ReplyToMessageID = dest.ReplyTo
	_, err := c.bot.Send(msg)
	return err
}

// SendFiles sends the paths as one grouped payload with the caption on the
// first item. A single file goes out as a plain photo/document send; the
// media-group call needs at least two entries.
func (c *Client) SendFiles(ctx context.Context, dest adapter.Destination, paths []string, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no files to send")
	}

	if len(paths) == 1 {
		return c.sendSingle(dest, paths[0], caption)
	}

	media := make([]interface{}, 0, len(paths))
	for i, p := range paths {
		item := inputMedia(p)
		if i == 0 && caption != "" {
			switch m := item.(type) {
			case tgbotapi.InputMediaPhoto:
				m.Caption = caption
				item = m
			case tgbotapi.InputMediaDocument:
				m.Caption = caption
				item = m
			}
		}
		media = append(media, item)
	}
	group := tgbotapi.NewMediaGroup(dest.ChatID, media)
	group.ReplyToMessageID = dest.ReplyTo
	_, err := c.bot.SendMediaGroup(group)
	return err
}

func (c *Client) sendSingle(dest adapter.Destination, path, caption string) error {
	if isPhotoPath(path) {
		msg := tgbotapi.NewPhoto(dest.ChatID, tgbotapi.FilePath(path))
		msg.Caption = caption
		msg.ReplyToMessageID = dest.ReplyTo
		_, err := c.bot.Send(msg)
		return err
	}
	msg := tgbotapi.NewDocument(dest.ChatID, tgbotapi.FilePath(path))
	msg.Caption = caption
	msg.ReplyToMessageID = dest.ReplyTo
	_, err := c.bot.Send(msg)
	return err
}

func inputMedia(path string) interface{} {
	if isPhotoPath(path) {
		return tgbotapi.NewInputMediaPhoto(tgbotapi.FilePath(path))
	}
	return tgbotapi.NewInputMediaDocument(tgbotapi.FilePath(path))
}

func isPhotoPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}

// GetForumTopics: the Bot API has no topic-listing call. The resolver falls
// back to anchoring on the topic id itself when it sees this error.
func (c *Client) GetForumTopics(ctx context.Context, dest adapter.Destination, pageSize int) ([]adapter.ForumTopic, error) {
	return nil, domain.ErrTopicListingUnsupported
}

// Self re-fetches the identity so a dead session surfaces as a setup
// failure rather than as N per-recipient failures.
func (c *Client) Self(ctx context.Context) (adapter.Identity, error) {
	if err := ctx.Err(); err != nil {
		return adapter.Identity{}, err
	}
	me, err := c.bot.GetMe()
	if err != nil {
		return adapter.Identity{}, err
	}
	return adapter.Identity{
		DisplayName: me.FirstName,
		Handle:      me.UserName,
		IsBot:       me.IsBot,
	}, nil
}
