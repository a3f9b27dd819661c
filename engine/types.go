package engine

// Suit constants, packed into the upper 4 bits of Card.
const (
	SuitHearts   uint8 = 0
	SuitDiamonds uint8 = 1
	SuitClubs    uint8 = 2
	SuitSpades   uint8 = 3
)

// NumSuits is the number of suits in a standard deck.
const NumSuits = 4

// Rank constants, packed into the lower 4 bits of Card. Ace is low.
const (
	RankAce   uint8 = 1
	RankTwo   uint8 = 2
	RankThree uint8 = 3
	RankFour  uint8 = 4
	RankFive  uint8 = 5
	RankSix   uint8 = 6
	RankSeven uint8 = 7
	RankEight uint8 = 8
	RankNine  uint8 = 9
	RankTen   uint8 = 10
	RankJack  uint8 = 11
	RankQueen uint8 = 12
	RankKing  uint8 = 13
)

// Card is a packed uint8: upper 4 bits = suit, lower 4 bits = rank.
// A Card is the immutable identity of a playing card; its orientation
// lives in the Slot that holds it.
type Card uint8

// EmptyCard represents the absence of a card.
const EmptyCard Card = 0xFF

// NewCard constructs a Card from suit and rank.
func NewCard(suit, rank uint8) Card {
	return Card((suit << 4) | (rank & 0x0F))
}

// Suit returns the suit bits (upper 4).
func (c Card) Suit() uint8 { return uint8(c) >> 4 }

// Rank returns the rank bits (lower 4).
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// Valid reports whether c encodes one of the 52 standard cards.
func (c Card) Valid() bool {
	return c != EmptyCard && c.Suit() < NumSuits && c.Rank() >= RankAce && c.Rank() <= RankKing
}

// Color is the red/black colour of a suit.
type Color uint8

const (
	Black Color = iota
	Red
)

// Color returns Red for hearts and diamonds, Black otherwise.
func (c Card) Color() Color {
	s := c.Suit()
	if s == SuitHearts || s == SuitDiamonds {
		return Red
	}
	return Black
}

var rankNames = [...]string{"?", "A", "2", "3", "4", "5", "6", "7", "8", "9", "T", "J", "Q", "K"}
var suitNames = [...]string{"H", "D", "C", "S"}

// RankString returns the short rank label ("A", "2".."9", "T", "J", "Q", "K").
func (c Card) RankString() string {
	r := c.Rank()
	if int(r) >= len(rankNames) {
		return "?"
	}
	return rankNames[r]
}

// SuitString returns the short suit label ("H", "D", "C", "S").
func (c Card) SuitString() string {
	s := c.Suit()
	if int(s) >= len(suitNames) {
		return "?"
	}
	return suitNames[s]
}

// String returns a two-letter label such as "QH" or "TS".
func (c Card) String() string {
	if c == EmptyCard {
		return "--"
	}
	return c.RankString() + c.SuitString()
}

// Slot is a card sitting in a pile together with its face orientation.
type Slot struct {
	Card   Card
	FaceUp bool
}

// ---------------------------------------------------------------------------
// Pile identity
// ---------------------------------------------------------------------------

// PileKind is the fixed role of a pile.
type PileKind uint8

const (
	KindStock PileKind = iota
	KindWaste
	KindFoundation
	KindTableau
)

func (k PileKind) String() string {
	switch k {
	case KindStock:
		return "stock"
	case KindWaste:
		return "waste"
	case KindFoundation:
		return "foundation"
	case KindTableau:
		return "tableau"
	default:
		return "unknown"
	}
}

const (
	NumFoundations = 4
	NumTableaus    = 7
	DeckSize       = 52
)

// PileID addresses one pile of a GameState. Index is only meaningful for
// foundations (0–3) and tableaus (0–6).
type PileID struct {
	Kind  PileKind
	Index uint8
}

// Convenience constructors.
var (
	StockID = PileID{Kind: KindStock}
	WasteID = PileID{Kind: KindWaste}
)

// FoundationID returns the id of foundation i.
func FoundationID(i int) PileID { return PileID{Kind: KindFoundation, Index: uint8(i)} }

// TableauID returns the id of tableau column i.
func TableauID(i int) PileID { return PileID{Kind: KindTableau, Index: uint8(i)} }

// Valid reports whether id names an existing pile.
func (id PileID) Valid() bool {
	switch id.Kind {
	case KindStock, KindWaste:
		return id.Index == 0
	case KindFoundation:
		return id.Index < NumFoundations
	case KindTableau:
		return id.Index < NumTableaus
	}
	return false
}

func (id PileID) String() string {
	switch id.Kind {
	case KindFoundation, KindTableau:
		return id.Kind.String() + "[" + string(rune('0'+id.Index)) + "]"
	}
	return id.Kind.String()
}
