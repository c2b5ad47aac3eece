package tarot

import "fmt"

// Suit keys. Major arcana cards carry SuitMajor; minor arcana cards carry one
// of the four minor suits.
const (
	SuitMajor     = "major"
	SuitWands     = "wands"
	SuitCups      = "cups"
	SuitSwords    = "swords"
	SuitPentacles = "pentacles"
)

// DeckSize is the number of cards in a full tarot deck.
const DeckSize = 78

// Card is a single tarot card. Cards are immutable and identified by an
// integer id: 0-21 are the major arcana, 22-77 the minor arcana (four suits
// of fourteen ranks each).
type Card struct {
	ID       int
	Name     string
	Suit     string
	Keywords string
}

var majorArcanaNames = [22]string{
	"Шут",
	"Маг",
	"Жрица",
	"Императрица",
	"Император",
	"Иерофант",
	"Влюблённые",
	"Колесница",
	"Сила",
	"Отшельник",
	"Колесо Фортуны",
	"Справедливость",
	"Повешенный",
	"Смерть",
	"Умеренность",
	"Дьявол",
	"Башня",
	"Звезда",
	"Луна",
	"Солнце",
	"Суд",
	"Мир",
}

var majorArcanaKeywords = [22]string{
	"начало, доверие, импровизация",
	"воля, концентрация, ресурсы",
	"интуиция, тайна, глубина",
	"забота, изобилие, творчество",
	"структура, порядок, ответственность",
	"традиции, наставничество, обучение",
	"выбор, союз, привязанность",
	"движение, победа, фокус",
	"мужество, мягкая сила, баланс",
	"поиск, одиночество, внутренняя мудрость",
	"цикл, перемены, удача",
	"равновесие, честность, договорённость",
	"пауза, новая перспектива, жертва",
	"трансформация, завершение, обновление",
	"гармония, умеренность, поток",
	"искушение, зависимость, ограничение",
	"кризис, освобождение, пересмотр",
	"надежда, вдохновение, исцеление",
	"сомнения, иллюзии, скрытое",
	"радость, ясность, успех",
	"пробуждение, переоценка, итог",
	"завершение, целостность, новый цикл",
}

var minorRanks = [14]string{
	"Туз",
	"Двойка",
	"Тройка",
	"Четвёрка",
	"Пятёрка",
	"Шестёрка",
	"Семёрка",
	"Восьмёрка",
	"Девятка",
	"Десятка",
	"Паж",
	"Рыцарь",
	"Королева",
	"Король",
}

// minorSuits fixes the suit order and therefore the card ids 22-77.
var minorSuits = []struct {
	key      string
	genitive string
	keywords string
}{
	{SuitWands, "Жезлов", "действие, энергия, проявление"},
	{SuitCups, "Кубков", "чувства, отношения, вдохновение"},
	{SuitSwords, "Мечей", "ум, решения, конфликты"},
	{SuitPentacles, "Пентаклей", "материя, ресурсы, стабильность"},
}

var deck = buildDeck()

func buildDeck() [DeckSize]Card {
	var cards [DeckSize]Card
	for i, name := range majorArcanaNames {
		cards[i] = Card{
			ID:       i,
			Name:     name,
			Suit:     SuitMajor,
			Keywords: majorArcanaKeywords[i],
		}
	}

	id := len(majorArcanaNames)
	for _, suit := range minorSuits {
		for _, rank := range minorRanks {
			cards[id] = Card{
				ID:       id,
				Name:     fmt.Sprintf("%s %s", rank, suit.genitive),
				Suit:     suit.key,
				Keywords: suit.keywords,
			}
			id++
		}
	}
	return cards
}

// CardByID returns the card with the given id. The id must be in [0, DeckSize).
func CardByID(id int) Card {
	return deck[id]
}

// Cards returns all 78 cards in id order.
func Cards() []Card {
	return deck[:]
}
