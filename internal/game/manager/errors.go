package manager

import (
	"github.com/pkg/errors"

	"RedCatch/internal/game/engine"
)

// 房间生命周期错误，返回给发起请求的人
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrAlreadyStarted  = errors.New("room already started")
	ErrNotHost         = errors.New("only the host can do this")
	ErrAlreadySeated   = errors.New("already seated in another room")
	ErrRoundInProgress = errors.New("round still in progress")
	ErrNotSeated       = errors.New("not seated in this room")
)

// ErrStaleDecision 定时任务到点时房间已经变了，只记日志
var ErrStaleDecision = errors.New("stale decision discarded")

// errBadPayload websocket 消息解不开
var errBadPayload = errors.New("bad payload")

var reasons = map[error]string{
	ErrRoomNotFound:    "room_not_found",
	ErrRoomFull:        "room_full",
	ErrAlreadyStarted:  "already_started",
	ErrNotHost:         "not_host",
	ErrAlreadySeated:   "already_seated",
	ErrRoundInProgress: "round_in_progress",
	ErrNotSeated:       "not_seated",
	ErrStaleDecision:   "stale_decision",
	errBadPayload:      "bad_payload",
}

// Reason 对外的错误代码，规则错误交给 engine
func Reason(err error) string {
	if r, ok := reasons[errors.Cause(err)]; ok {
		return r
	}
	return engine.Reason(err)
}
