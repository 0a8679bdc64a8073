package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-pedalboard/dsp/core"
)

func ExampleSamples() {
	fmt.Println(core.Samples(100, core.DefaultSampleRate), core.Samples(2.5, 44100))

	// Output:
	// 4800 110
}

func ExampleHardClip() {
	fmt.Println(core.HardClip(1.7), core.HardClip(-0.3))

	// Output:
	// 1 -0.3
}
