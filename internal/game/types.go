package game

// Emotion is a player's emotional state. The canonical rules only use
// neutral and angry; transitions are table-driven so new emotions can be
// added without touching control flow.
type Emotion string

const (
	EmotionNeutral Emotion = "neutral"
	EmotionAngry   Emotion = "angry"
)

// Level is the extraction level a player chooses on their turn.
type Level int

const (
	Level1 Level = 1
	Level2 Level = 2
	Level3 Level = 3
)

// Valid reports whether the level is one of the playable levels.
func (l Level) Valid() bool {
	_, ok := effectTable[l]
	return ok
}

// Points returns the point award for the level.
func (l Level) Points() int {
	return effectTable[l].Points
}

// Pain is the intensity of the side effect a neighbor receives.
type Pain string

const (
	PainNone    Pain = "none"
	PainMild    Pain = "mild"
	PainIntense Pain = "intense"
)

// TransitionTable maps a neighbor's current emotion to the emotion it
// transitions to. Emotions missing from the table are left unchanged.
type TransitionTable map[Emotion]Emotion

// LevelEffect describes what one extraction level does: points to the
// actor, pain delivered to each neighbor, and the emotion transition that
// pain triggers.
type LevelEffect struct {
	Points     int
	Pain       Pain
	Transition TransitionTable
}

// effectTable is the canonical rule set. Level 2 pain is recorded but has
// no emotion transition. Level 3 anger is idempotent: angry maps to angry.
var effectTable = map[Level]LevelEffect{
	Level1: {Points: 1, Pain: PainNone},
	Level2: {Points: 2, Pain: PainMild},
	Level3: {Points: 3, Pain: PainIntense, Transition: TransitionTable{
		EmotionNeutral: EmotionAngry,
		EmotionAngry:   EmotionAngry,
	}},
}

// EffectFor returns the rule entry for a level.
func EffectFor(l Level) (LevelEffect, bool) {
	e, ok := effectTable[l]
	return e, ok
}
