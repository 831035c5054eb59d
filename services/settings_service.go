package services

import (
	"math/rand"

	"typing-duel-system/models"
)

// MatchSettings is the challenge bundle attached verbatim to a Game at
// creation. Every call to GenerateMatchSettings produces a fresh,
// independent bundle; sampling is uniform with replacement, so repeated
// values within one bundle are possible.
type MatchSettings struct {
	Language          string
	Phrase            string
	Words             models.StringList
	LettersAndSymbols models.SymbolList
	Holds             models.HoldList
}

const (
	settingsLanguage = "en"
	wordsPerMatch    = 6
	symbolsPerMatch  = 6
	holdsPerMatch    = 6
)

var phraseCorpus = []string{
	"The quick brown fox jumps over the lazy dog",
	"Pack my box with five dozen liquor jugs",
	"How vexingly quick daft zebras jump",
	"Sphinx of black quartz judge my vow",
	"The five boxing wizards jump quickly",
	"Bright vixens jump dozy fowl quack",
	"Jackdaws love my big sphinx of quartz",
	"Two driven jocks help fax my big quiz",
	"Five quacking zephyrs jolt my wax bed",
	"The jay pig fox zebra and my wolves quack",
	"Quick zephyrs blow vexing daft Jim",
	"Waltz bad nymph for quick jigs vex",
}

var wordCorpus = []string{
	"keyboard", "velocity", "thunder", "crystal", "journey", "horizon",
	"lantern", "whisper", "granite", "meadow", "harbor", "compass",
	"ember", "voyage", "cascade", "orchard", "pebble", "summit",
	"twilight", "breeze", "canyon", "drift", "falcon", "glacier",
	"hollow", "island", "jungle", "kernel", "lagoon", "marble",
	"nectar", "oasis", "prairie", "quiver", "ripple", "saddle",
	"timber", "umbrella", "valley", "willow", "yonder", "zenith",
	"anchor", "blossom", "cinder", "dagger", "eclipse", "flicker",
}

var symbolCorpus = []string{
	"a", "b", "c", "d", "e", "f", "g", "h", "k", "m", "n", "p",
	"q", "r", "s", "t", "w", "x", "y", "z",
	"!", "@", "#", "$", "%", "&", "*", "?", "+", "=", ";", ":",
}

var holdKeys = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0"}

// GenerateMatchSettings produces the randomized content for one match:
// a phrase, a word list, a positioned letter/symbol list, and a
// hold-word list each paired with the digit key to hold.
func GenerateMatchSettings() MatchSettings {
	words := make(models.StringList, wordsPerMatch)
	for i := range words {
		words[i] = wordCorpus[rand.Intn(len(wordCorpus))]
	}

	symbols := make(models.SymbolList, symbolsPerMatch)
	for i := range symbols {
		symbols[i] = models.SymbolToken{
			Char:     symbolCorpus[rand.Intn(len(symbolCorpus))],
			Position: i,
		}
	}

	holds := make(models.HoldList, holdsPerMatch)
	for i := range holds {
		holds[i] = models.Hold{
			Word: wordCorpus[rand.Intn(len(wordCorpus))],
			Key:  holdKeys[rand.Intn(len(holdKeys))],
		}
	}

	return MatchSettings{
		Language:          settingsLanguage,
		Phrase:            phraseCorpus[rand.Intn(len(phraseCorpus))],
		Words:             words,
		LettersAndSymbols: symbols,
		Holds:             holds,
	}
}

var botNicknames = []string{
	"SwiftFingers", "KeySmasher", "TypoHunter", "WordStorm",
	"RapidRune", "InkDash", "QuillBlitz", "LetterHawk",
	"CapsLockCarl", "HomeRowHero", "SpaceBarSam", "ShiftShadow",
}

var botAvatars = []string{
	"bot-owl", "bot-fox", "bot-cat", "bot-raven", "bot-panda", "bot-lynx",
}

// RandomBotIdentity picks a cosmetic nickname/avatar pair for a bot
// match. Stored per-game so every bot match looks like a distinct
// opponent.
func RandomBotIdentity() (nickname, avatar string) {
	return botNicknames[rand.Intn(len(botNicknames))],
		botAvatars[rand.Intn(len(botAvatars))]
}
