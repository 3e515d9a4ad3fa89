package bot

import (
	"math/rand"
	"time"

	"RedCatch/internal/game/engine"
	"RedCatch/internal/game/rules"
	"RedCatch/internal/game/table"
)

// Move 托管座位的决定
type Move struct {
	Pass  bool
	Cards []table.Card
}

// Agent 托管出牌
// 概率越高越“凶”，作为难度参数从配置注入
type Agent struct {
	PlayProbability        float64 // 能管上时出牌的概率
	RevealHeartProbability float64 // 亮红桃3 的概率
	RevealBlackProbability float64 // 每张黑3 亮出的概率

	rnd *rand.Rand
}

func NewAgent(play, revealHeart, revealBlack float64, rnd *rand.Rand) *Agent {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Agent{
		PlayProbability:        play,
		RevealHeartProbability: revealHeart,
		RevealBlackProbability: revealBlack,
		rnd:                    rnd,
	}
}

// Decide 轮到自己时出什么
// 首出/自由出牌：最短、最小的合法牌型；跟牌：按概率出最小能管上的，否则不要
func (a *Agent) Decide(v engine.View) Move {
	plays := rules.LegalPlays(v.Hand, v.Reference, v.Required)
	if v.MustPlay() {
		if len(plays) == 0 {
			// 理论上不会发生：自由出牌至少有单张
			return Move{Pass: true}
		}
		return Move{Cards: smallest(plays, true)}
	}
	if len(plays) == 0 || a.rnd.Float64() >= a.PlayProbability {
		return Move{Pass: true}
	}
	return Move{Cards: smallest(plays, false)}
}

// smallest 按牌型大小取最小；shortFirst 时先比张数
func smallest(plays [][]table.Card, shortFirst bool) []table.Card {
	best := plays[0]
	bestVal := rules.Classify(best).Value
	for _, p := range plays[1:] {
		val := rules.Classify(p).Value
		if shortFirst && len(p) != len(best) {
			if len(p) < len(best) {
				best, bestVal = p, val
			}
			continue
		}
		if val < bestVal {
			best, bestVal = p, val
		}
	}
	return table.Clone(best)
}

// ChooseReveals 亮牌阶段开始时要亮的 3
func (a *Agent) ChooseReveals(hand []table.Card) []table.Card {
	var out []table.Card
	for _, c := range hand {
		switch {
		case c.IsHeartThree():
			if a.rnd.Float64() < a.RevealHeartProbability {
				out = append(out, c)
			}
		case c.IsBlackThree():
			if a.rnd.Float64() < a.RevealBlackProbability {
				out = append(out, c)
			}
		}
	}
	return out
}

// ThinkDelay 模拟思考时间，[lo, hi)
func (a *Agent) ThinkDelay(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(a.rnd.Int63n(int64(hi-lo)))
}
