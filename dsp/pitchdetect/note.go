package pitchdetect

import (
	"math"
	"strconv"
)

// MinFrequency is the lowest frequency mapped to a note.
const MinFrequency = 20.0

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Note is an equal-tempered note reading.
type Note struct {
	Name      string  // pitch class, e.g. "A" or "C#"
	Octave    int     // scientific octave, A4 = 440 Hz
	Cents     float64 // signed deviation from the nearest note, in [-50, 50]
	Frequency float64 // the analysed frequency in Hz
}

// String returns the note name with octave, e.g. "A4".
func (n Note) String() string {
	return n.Name + strconv.Itoa(n.Octave)
}

// FreqToNote maps freq to the nearest note. It returns false for
// frequencies at or below MinFrequency.
func FreqToNote(freq float64) (Note, bool) {
	if !(freq > MinFrequency) || math.IsInf(freq, 0) {
		return Note{}, false
	}

	midi := 12*math.Log2(freq/440) + 69
	nearest := int(math.Round(midi))

	return Note{
		Name:      noteNames[nearest%12],
		Octave:    nearest/12 - 1,
		Cents:     (midi - float64(nearest)) * 100,
		Frequency: freq,
	}, true
}
