package manager

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"RedCatch/internal/game/table"
	"RedCatch/internal/utils"
	"RedCatch/internal/websocket"
)

const maxChatLen = 200

type revealPayload struct {
	Card table.Card `mapstructure:"card"`
}

type playPayload struct {
	Cards []table.Card `mapstructure:"cards"`
}

type chatPayload struct {
	Text string `mapstructure:"text"`
}

func decode(data interface{}, out interface{}) error {
	if data == nil {
		return errors.Wrap(errBadPayload, "empty data")
	}
	if err := mapstructure.Decode(data, out); err != nil {
		return errors.Wrapf(errBadPayload, "%v", err)
	}
	return nil
}

// HandlePlayerMessage 统一入口（来自 Hub.Incoming）
func (m *GameManager) HandlePlayerMessage(msg websocket.IncomingMessage) {
	roomID, ok := m.registry.RoomOf(msg.From)
	if !ok {
		m.replyError(msg.From, errors.Wrapf(ErrNotSeated, "%s", msg.From))
		return
	}
	ctx := context.Background()

	var err error
	switch msg.Event {

	case ActionToggleReveal:
		var p revealPayload
		if err = decode(msg.Data, &p); err == nil {
			_, err = m.ToggleReveal(ctx, roomID, msg.From, p.Card)
		}

	case ActionPlayCards:
		var p playPayload
		if err = decode(msg.Data, &p); err == nil {
			_, err = m.SubmitPlay(ctx, roomID, msg.From, p.Cards)
		}

	case ActionPass:
		_, err = m.SubmitPass(ctx, roomID, msg.From)

	case ActionChat:
		// 桌内聊天：data 可以直接是字符串
		var p chatPayload
		if s, isText := msg.Data.(string); isText {
			p.Text = s
		} else {
			err = decode(msg.Data, &p)
		}
		if err == nil {
			err = m.Chat(roomID, msg.From, p.Text)
		}

	default:
		err = errors.Wrapf(errBadPayload, "unknown event %q", msg.Event)
	}

	if err != nil {
		m.replyError(msg.From, err)
	}
}

func (m *GameManager) replyError(handle string, err error) {
	m.hub.SendToPlayer(handle, websocket.OutgoingMessage{
		Event: EventPlayError,
		Data:  PlayError{Reason: Reason(err), Message: err.Error()},
	})
}

// Chat 桌内聊天广播
func (m *GameManager) Chat(roomID, handle, text string) error {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > maxChatLen {
		return errors.Wrap(errBadPayload, "chat text length")
	}
	room, seat, err := m.lockSeat(roomID, handle)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	m.broadcast(room, EventChat, ChatMessage{From: handle, Name: room.seats[seat].Name, Text: text})
	utils.Log.Debug("chat", "room", roomID, "handle", handle)
	return nil
}
