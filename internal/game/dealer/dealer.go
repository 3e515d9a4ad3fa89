package dealer

import (
	"encoding/binary"
	"math/rand"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"RedCatch/internal/game/table"
)

// DeckSize 4 门 x 12 点 + 大小王
const DeckSize = 50

// Dealer 只负责洗牌、发牌和发牌承诺（无规则判断）
type Dealer struct {
	deck  []table.Card
	order []table.Card // 洗好后的完整顺序，用于公开校验
	seed  int64
	rnd   *rand.Rand
}

func NewDealer(seed int64) *Dealer {
	return &Dealer{
		deck: make([]table.Card, 0, DeckSize),
		seed: seed,
		rnd:  rand.New(rand.NewSource(seed)),
	}
}

// NewDeck 初始化一副牌并洗牌
func (d *Dealer) NewDeck() {
	d.deck = MakeDeck()
	d.shuffle()
	d.order = table.Clone(d.deck)
}

// MakeDeck 未洗的 50 张牌（没有 6）
func MakeDeck() []table.Card {
	deck := make([]table.Card, 0, DeckSize)
	for _, s := range table.Suits {
		for _, r := range table.Ranks {
			deck = append(deck, table.Card{Suit: s, Rank: r})
		}
	}
	deck = append(deck,
		table.Card{Suit: table.Joker, Rank: table.SmallJokerRank},
		table.Card{Suit: table.Joker, Rank: table.BigJokerRank},
	)
	return deck
}

// Fisher-Yates
func (d *Dealer) shuffle() {
	d.rnd.Shuffle(len(d.deck), func(i, j int) {
		d.deck[i], d.deck[j] = d.deck[j], d.deck[i]
	})
}

// Deal 5 人轮流发牌，每人 10 张，按大小降序整理
func (d *Dealer) Deal() [table.SeatCount][]table.Card {
	var hands [table.SeatCount][]table.Card
	for i := range hands {
		hands[i] = make([]table.Card, 0, table.HandSize)
	}
	for i := 0; i < DeckSize; i++ {
		hands[i%table.SeatCount] = append(hands[i%table.SeatCount], d.draw())
	}
	for i := range hands {
		table.SortByStrength(hands[i])
	}
	return hands
}

func (d *Dealer) draw() table.Card {
	if len(d.deck) == 0 {
		// should not happen if properly invoked
		d.NewDeck()
	}
	c := d.deck[0]
	d.deck = d.deck[1:]
	return c
}

func (d *Dealer) Seed() int64 { return d.seed }

// Order 本副牌洗好后的顺序
func (d *Dealer) Order() []table.Card { return table.Clone(d.order) }

// Commitment 发牌前公开的承诺：keccak256(seed || 牌序)
func (d *Dealer) Commitment() string {
	return Commit(d.seed, d.order)
}

func Commit(seed int64, order []table.Card) string {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(seed))
	ids := make([]string, len(order))
	for i, c := range order {
		ids[i] = c.ID()
	}
	return crypto.Keccak256Hash(buf, []byte(strings.Join(ids, ","))).Hex()
}

// VerifyCommitment 客户端在一局结束后用公开的种子和牌序核对承诺
func VerifyCommitment(seed int64, order []table.Card, commitment string) bool {
	return strings.EqualFold(Commit(seed, order), commitment)
}
