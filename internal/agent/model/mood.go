package model

// Mood is the assistant's emotional state for a reply.
type Mood string

const (
	MoodFrustrated Mood = "frustrated"
	MoodTired      Mood = "tired"
	MoodNormal     Mood = "normal"
	MoodHopeful    Mood = "hopeful"
	MoodHappy      Mood = "happy"
	MoodProud      Mood = "proud"

	// MoodDisappointed is a deprecated input value; it maps onto MoodTired.
	MoodDisappointed Mood = "disappointed"
)

// MoodLadder is ordered from worst to best. Hint adjustments move along it.
var MoodLadder = [...]Mood{
	MoodFrustrated,
	MoodTired,
	MoodNormal,
	MoodHopeful,
	MoodHappy,
	MoodProud,
}

// Valid reports whether m is accepted as a personality mood, legacy values included.
func (m Mood) Valid() bool {
	switch m {
	case MoodFrustrated, MoodTired, MoodNormal, MoodHopeful, MoodHappy, MoodProud, MoodDisappointed:
		return true
	}
	return false
}

// Tone is the personality tone chosen by the user. It is never derived.
type Tone string

const (
	ToneNeutral      Tone = "neutral"
	ToneFriendly     Tone = "friendly"
	ToneSerious      Tone = "serious"
	ToneMotivational Tone = "motivational"
	ToneStrict       Tone = "strict"
)

func (t Tone) Valid() bool {
	switch t {
	case ToneNeutral, ToneFriendly, ToneSerious, ToneMotivational, ToneStrict:
		return true
	}
	return false
}
